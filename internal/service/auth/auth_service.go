// Package auth 认证与账号服务
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/jwt"
	"github.com/focomkt/sales-hub-backend/internal/common/logger"
	"github.com/focomkt/sales-hub-backend/internal/common/utils"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
	membersvc "github.com/focomkt/sales-hub-backend/internal/service/member"
	"github.com/focomkt/sales-hub-backend/pkg/identity"
)

// MinPasswordLength 密码最小长度
const MinPasswordLength = 6

// AuthService 认证服务
// 身份凭证托管在外部身份服务，本地只保存档案与会员数据，
// 登录成功后签发本地 JWT 供后续请求使用
type AuthService struct {
	provider         identity.Provider
	profileRepo      *repository.ProfileRepository
	memberSvc        *membersvc.MemberService
	jwtManager       *jwt.Manager
	resetRedirectURL string
}

// NewAuthService 创建认证服务
func NewAuthService(
	provider identity.Provider,
	profileRepo *repository.ProfileRepository,
	memberSvc *membersvc.MemberService,
	jwtManager *jwt.Manager,
	resetRedirectURL string,
) *AuthService {
	return &AuthService{
		provider:         provider,
		profileRepo:      profileRepo,
		memberSvc:        memberSvc,
		jwtManager:       jwtManager,
		resetRedirectURL: resetRedirectURL,
	}
}

// SignUpRequest 注册请求
type SignUpRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"cpf"`
	Phone     string `json:"phone"`
	UplineID  *int64 `json:"upline_id"`
}

// Account 档案及其会员记录（管理员没有会员记录）
type Account struct {
	Profile *models.Profile `json:"profile"`
	Member  *models.Member  `json:"member,omitempty"`
}

// SignUp 注册账号
// 会员角色先校验推荐位，再在身份服务建用户，最后落档案与会员记录（待审核）
func (s *AuthService) SignUp(ctx context.Context, req *SignUpRequest) (*Account, error) {
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, apperrors.ErrInvalidParams.WithMessage("无效的账号角色")
	}
	if !utils.ValidateEmail(req.Email) {
		return nil, apperrors.ErrInvalidParams.WithMessage("无效的邮箱地址")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperrors.ErrPasswordTooShort
	}

	exists, err := s.profileRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	if role == models.RoleMember {
		if err := s.memberSvc.ValidateSponsor(ctx, req.UplineID); err != nil {
			return nil, err
		}
	}

	user, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapProviderError(err)
	}

	return s.createAccount(ctx, user, role, req)
}

// createAccount 注册/邀请成功后落本地档案与会员记录
func (s *AuthService) createAccount(ctx context.Context, user *identity.User, role string, req *SignUpRequest) (*Account, error) {
	profile := &models.Profile{
		AuthID:    user.ID,
		Email:     req.Email,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	account := &Account{Profile: profile}
	if role == models.RoleMember {
		member, err := s.memberSvc.Create(ctx, &membersvc.CreateRequest{
			AuthID:    user.ID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			CPF:       req.CPF,
			Phone:     req.Phone,
			UplineID:  req.UplineID,
		})
		if err != nil {
			return nil, err
		}
		account.Member = member
	}
	return account, nil
}

// SignInResult 登录结果
type SignInResult struct {
	Token   *jwt.TokenPair  `json:"token"`
	Profile *models.Profile `json:"profile"`
	Member  *models.Member  `json:"member,omitempty"`
}

// SignIn 登录
// 待审核与已拒绝的会员账号禁止登录
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, apperrors.ErrSignInFailed
		}
		return nil, apperrors.ErrExternalService.WithError(err)
	}

	profile, err := s.profileRepo.GetByAuthID(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	result := &SignInResult{Profile: profile}
	var memberID int64
	if profile.Role == models.RoleMember {
		member, err := s.memberSvc.GetByAuthID(ctx, profile.AuthID)
		if err != nil {
			return nil, err
		}
		switch member.Status {
		case models.MemberStatusPending:
			return nil, apperrors.ErrAccountPending
		case models.MemberStatusRejected:
			return nil, apperrors.ErrAccountRejected
		}
		result.Member = member
		memberID = member.ID
	}

	token, err := s.jwtManager.GenerateTokenPair(memberID, profile.AuthID, profile.Role)
	if err != nil {
		return nil, apperrors.ErrInternalError.WithError(err)
	}
	result.Token = token

	return result, nil
}

// Me 获取当前登录账号
func (s *AuthService) Me(ctx context.Context, authID string) (*Account, error) {
	profile, err := s.profileRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	account := &Account{Profile: profile}
	if profile.Role == models.RoleMember {
		member, err := s.memberSvc.GetByAuthID(ctx, authID)
		if err != nil {
			return nil, err
		}
		account.Member = member
	}
	return account, nil
}

// SignOut 注销会话，身份服务侧失败只记日志
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		logger.Warn("身份服务注销失败", zap.Error(err))
	}
	return nil
}

// InviteRequest 邀请请求
type InviteRequest struct {
	Email     string `json:"email" binding:"required"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"cpf"`
	Phone     string `json:"phone"`
	UplineID  *int64 `json:"upline_id"`
}

// Invite 管理员邀请新账号
// 受邀人通过邮件设置密码，本地档案与会员记录先行创建
func (s *AuthService) Invite(ctx context.Context, req *InviteRequest) (*Account, error) {
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, apperrors.ErrInvalidParams.WithMessage("无效的账号角色")
	}
	if !utils.ValidateEmail(req.Email) {
		return nil, apperrors.ErrInvalidParams.WithMessage("无效的邮箱地址")
	}

	exists, err := s.profileRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, apperrors.ErrEmailExists
	}

	if role == models.RoleMember {
		if err := s.memberSvc.ValidateSponsor(ctx, req.UplineID); err != nil {
			return nil, err
		}
	}

	user, err := s.provider.InviteByEmail(ctx, req.Email)
	if err != nil {
		return nil, mapProviderError(err)
	}

	return s.createAccount(ctx, user, role, &SignUpRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CPF:       req.CPF,
		Phone:     req.Phone,
		UplineID:  req.UplineID,
	})
}

// ChangePassword 管理员修改指定账号的密码
func (s *AuthService) ChangePassword(ctx context.Context, authID, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.ErrPasswordTooShort
	}
	if err := s.provider.UpdatePassword(ctx, authID, newPassword); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return mapProviderError(err)
	}
	return nil
}

// RequestPasswordReset 发送密码重置邮件
// 邮箱是否注册不向调用方泄露
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if !utils.ValidateEmail(email) {
		return apperrors.ErrInvalidParams.WithMessage("无效的邮箱地址")
	}
	if err := s.provider.SendPasswordReset(ctx, email, s.resetRedirectURL); err != nil {
		logger.Warn("密码重置邮件发送失败", zap.String("email", email), zap.Error(err))
	}
	return nil
}

// DeleteMember 管理员删除会员账号
// 会员记录删除后清理档案与身份服务用户，清理失败只记日志
func (s *AuthService) DeleteMember(ctx context.Context, memberID int64) error {
	member, err := s.memberSvc.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if err := s.memberSvc.Delete(ctx, memberID); err != nil {
		return err
	}

	if err := s.profileRepo.DeleteByAuthID(ctx, member.AuthID); err != nil {
		logger.Warn("删除会员档案失败",
			zap.Int64("member_id", memberID),
			zap.String("auth_id", member.AuthID),
			zap.Error(err))
	}
	if err := s.provider.DeleteUser(ctx, member.AuthID); err != nil {
		logger.Warn("删除身份服务用户失败",
			zap.Int64("member_id", memberID),
			zap.String("auth_id", member.AuthID),
			zap.Error(err))
	}
	return nil
}

// mapProviderError 身份服务错误转应用错误
func mapProviderError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return apperrors.ErrEmailExists
	case errors.Is(err, identity.ErrWeakPassword):
		return apperrors.ErrPasswordTooShort
	case errors.Is(err, identity.ErrInvalidCredentials):
		return apperrors.ErrSignInFailed
	case errors.Is(err, identity.ErrUserNotFound):
		return apperrors.ErrProfileNotFound
	default:
		return apperrors.ErrExternalService.WithError(err)
	}
}
