// Package member 会员服务
package member

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/logger"
	"github.com/focomkt/sales-hub-backend/internal/common/metrics"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
	"github.com/focomkt/sales-hub-backend/pkg/mailer"
)

// MemberService 会员服务
type MemberService struct {
	memberRepo  *repository.MemberRepository
	profileRepo *repository.ProfileRepository
	mail        mailer.Sender
}

// NewMemberService 创建会员服务
func NewMemberService(
	memberRepo *repository.MemberRepository,
	profileRepo *repository.ProfileRepository,
	mail mailer.Sender,
) *MemberService {
	if mail == nil {
		mail = mailer.Noop{}
	}
	return &MemberService{
		memberRepo:  memberRepo,
		profileRepo: profileRepo,
		mail:        mail,
	}
}

// ValidateSponsor 校验推荐位是否可用
// 上线必须是根会员且直属成员未满；无上线时根会员名额同样受限。
// 只在创建/注册时校验一次，之后的树结构不再复查
func (s *MemberService) ValidateSponsor(ctx context.Context, uplineID *int64) error {
	if uplineID == nil {
		count, err := s.memberRepo.CountRoots(ctx)
		if err != nil {
			return apperrors.ErrDatabaseError.WithError(err)
		}
		if count >= models.MaxSquadSize {
			return apperrors.ErrRootQuotaFull
		}
		return nil
	}

	upline, err := s.memberRepo.GetByID(ctx, *uplineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUplineNotFound
		}
		return apperrors.ErrDatabaseError.WithError(err)
	}
	if !upline.IsRoot() {
		return apperrors.ErrUplineNotFound.WithMessage("无效的上线：上线必须是根会员")
	}

	count, err := s.memberRepo.CountAssociates(ctx, *uplineID)
	if err != nil {
		return apperrors.ErrDatabaseError.WithError(err)
	}
	if count >= models.MaxSquadSize {
		return apperrors.ErrSquadFull
	}
	return nil
}

// CreateRequest 创建会员请求
type CreateRequest struct {
	AuthID         string `json:"auth_id" binding:"required"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	CPF            string `json:"cpf"`
	Phone          string `json:"phone"`
	Grade          string `json:"grade"`
	ProfilePicture string `json:"profile_picture"`
	UplineID       *int64 `json:"upline_id"`
}

// Create 创建会员，初始状态为待审核
func (s *MemberService) Create(ctx context.Context, req *CreateRequest) (*models.Member, error) {
	if err := s.ValidateSponsor(ctx, req.UplineID); err != nil {
		return nil, err
	}

	member := &models.Member{
		AuthID:         req.AuthID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		CPF:            req.CPF,
		Phone:          req.Phone,
		Grade:          req.Grade,
		ProfilePicture: req.ProfilePicture,
		UplineID:       req.UplineID,
		Status:         models.MemberStatusPending,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	s.refreshPendingGauge(ctx)
	return member, nil
}

// GetByID 获取会员
func (s *MemberService) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return member, nil
}

// GetDetail 获取会员详情，附带其上线信息
func (s *MemberService) GetDetail(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.memberRepo.GetByIDWithUpline(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return member, nil
}

// GetByAuthID 根据身份标识获取会员
func (s *MemberService) GetByAuthID(ctx context.Context, authID string) (*models.Member, error) {
	member, err := s.memberRepo.GetByAuthID(ctx, authID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return member, nil
}

// List 获取会员列表
func (s *MemberService) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	members, total, err := s.memberRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperrors.ErrDatabaseError.WithError(err)
	}
	return members, total, nil
}

// GetByStatus 按审核状态获取会员列表
func (s *MemberService) GetByStatus(ctx context.Context, status string) ([]*models.Member, error) {
	if !models.ValidMemberStatus(status) {
		return nil, apperrors.ErrInvalidStatus
	}
	members, err := s.memberRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return members, nil
}

// UpdateRequest 更新会员请求，未提供的字段保持原值
type UpdateRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	CPF            *string `json:"cpf"`
	Phone          *string `json:"phone"`
	Grade          *string `json:"grade"`
	ProfilePicture *string `json:"profile_picture"`

	// 聚合计数与审核状态仅管理员可改
	TotalSales      *float64 `json:"total_sales"`
	TotalContacts   *float64 `json:"total_contacts"`
	TotalCommission *float64 `json:"total_commission"`
	Status          *string  `json:"status"`
}

// Update 更新会员资料
// isAdmin 为 false 时聚合计数与审核状态字段被忽略，计数只能由结单级联驱动
func (s *MemberService) Update(ctx context.Context, id int64, req *UpdateRequest, isAdmin bool) (*models.Member, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if req.CPF != nil {
		fields["cpf"] = *req.CPF
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Grade != nil {
		fields["grade"] = *req.Grade
	}
	if req.ProfilePicture != nil {
		fields["profile_picture"] = *req.ProfilePicture
	}

	if isAdmin {
		if req.TotalSales != nil {
			fields["total_sales"] = *req.TotalSales
		}
		if req.TotalContacts != nil {
			fields["total_contacts"] = *req.TotalContacts
		}
		if req.TotalCommission != nil {
			fields["total_commission"] = *req.TotalCommission
		}
		if req.Status != nil {
			if !models.ValidMemberStatus(*req.Status) {
				return nil, apperrors.ErrInvalidStatus
			}
			fields["status"] = *req.Status
		}
	}

	if len(fields) > 0 {
		if err := s.memberRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, apperrors.ErrDatabaseError.WithError(err)
		}
	}
	return s.GetByID(ctx, id)
}

// Approve 审核通过
func (s *MemberService) Approve(ctx context.Context, id int64) (*models.Member, error) {
	return s.review(ctx, id, models.MemberStatusApproved)
}

// Reject 审核拒绝
func (s *MemberService) Reject(ctx context.Context, id int64) (*models.Member, error) {
	return s.review(ctx, id, models.MemberStatusRejected)
}

// review 审核并通知会员，通知失败不影响审核结果
func (s *MemberService) review(ctx context.Context, id int64, status string) (*models.Member, error) {
	if err := s.memberRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	member, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.GetMetrics().RecordMemberReview(status)
	s.refreshPendingGauge(ctx)
	s.notifyReview(ctx, member, status)

	return member, nil
}

// notifyReview 发送审核结果通知邮件
func (s *MemberService) notifyReview(ctx context.Context, member *models.Member, status string) {
	profile, err := s.profileRepo.GetByAuthID(ctx, member.AuthID)
	if err != nil {
		logger.Warn("审核通知跳过：未找到会员档案",
			zap.Int64("member_id", member.ID),
			zap.String("auth_id", member.AuthID),
			zap.Error(err))
		return
	}

	subject := "您的账号已通过审核"
	body := fmt.Sprintf("<p>%s，您好！</p><p>您的账号已通过审核，现在可以登录系统了。</p>", member.FullName())
	if status == models.MemberStatusRejected {
		subject = "您的账号未通过审核"
		body = fmt.Sprintf("<p>%s，您好！</p><p>很抱歉，您的账号未通过审核。如有疑问请联系管理员。</p>", member.FullName())
	}

	if err := s.mail.Send(profile.Email, subject, body); err != nil {
		logger.Warn("审核通知邮件发送失败",
			zap.Int64("member_id", member.ID),
			zap.String("email", profile.Email),
			zap.Error(err))
	}
}

// MarkTutorialSeen 标记新手引导已读
func (s *MemberService) MarkTutorialSeen(ctx context.Context, id int64) (*models.Member, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.memberRepo.UpdateFields(ctx, id, map[string]interface{}{"has_seen_tutorial": true}); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return s.GetByID(ctx, id)
}

// Delete 删除会员
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	if err := s.memberRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return apperrors.ErrDatabaseError.WithError(err)
	}
	s.refreshPendingGauge(ctx)
	return nil
}

// refreshPendingGauge 刷新待审核会员数指标
func (s *MemberService) refreshPendingGauge(ctx context.Context) {
	count, err := s.memberRepo.CountByStatus(ctx, models.MemberStatusPending)
	if err != nil {
		return
	}
	metrics.GetMetrics().SetPendingMembers(float64(count))
}
