package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/jwt"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
	membersvc "github.com/focomkt/sales-hub-backend/internal/service/member"
	"github.com/focomkt/sales-hub-backend/pkg/identity"
)

// setupAuthTest 创建测试数据库、身份服务假件与认证服务
func setupAuthTest(t *testing.T) (*gorm.DB, *AuthService, *identity.Mock) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Member{}, &models.Profile{})
	require.NoError(t, err)

	provider := identity.NewMock()
	profileRepo := repository.NewProfileRepository(db)
	memberSvc := membersvc.NewMemberService(
		repository.NewMemberRepository(db),
		profileRepo,
		nil,
	)
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            "test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "sales-hub-test",
	})

	svc := NewAuthService(provider, profileRepo, memberSvc, jwtManager, "https://app.example.com/reset")
	return db, svc, provider
}

// signUpMember 注册一名会员并按需审核
func signUpMember(t *testing.T, db *gorm.DB, svc *AuthService, email, status string, uplineID *int64) *Account {
	account, err := svc.SignUp(context.Background(), &SignUpRequest{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		UplineID:  uplineID,
	})
	require.NoError(t, err)
	require.NotNil(t, account.Member)

	if status != models.MemberStatusPending {
		db.Model(&models.Member{}).Where("id = ?", account.Member.ID).Update("status", status)
		account.Member.Status = status
	}
	return account
}

func TestAuthService_SignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("注册会员_档案与会员记录同时创建", func(t *testing.T) {
		db, svc, _ := setupAuthTest(t)
		account, err := svc.SignUp(ctx, &SignUpRequest{
			Email:     "maria@example.com",
			Password:  "secret123",
			FirstName: "Maria",
			LastName:  "Silva",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleMember, account.Profile.Role)
		require.NotNil(t, account.Member)
		assert.Equal(t, models.MemberStatusPending, account.Member.Status)
		assert.Equal(t, account.Profile.AuthID, account.Member.AuthID)

		var count int64
		db.Model(&models.Profile{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("注册管理员_只有档案", func(t *testing.T) {
		_, svc, _ := setupAuthTest(t)
		account, err := svc.SignUp(ctx, &SignUpRequest{
			Email:    "admin@example.com",
			Password: "secret123",
			Role:     models.RoleAdmin,
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, account.Profile.Role)
		assert.Nil(t, account.Member)
	})

	t.Run("邮箱已注册", func(t *testing.T) {
		db, svc, _ := setupAuthTest(t)
		signUpMember(t, db, svc, "dup@example.com", models.MemberStatusPending, nil)

		_, err := svc.SignUp(ctx, &SignUpRequest{Email: "dup@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, apperrors.ErrEmailExists)
	})

	t.Run("密码过短", func(t *testing.T) {
		_, svc, _ := setupAuthTest(t)
		_, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@example.com", Password: "123"})
		assert.ErrorIs(t, err, apperrors.ErrPasswordTooShort)
	})

	t.Run("无效邮箱", func(t *testing.T) {
		_, svc, _ := setupAuthTest(t)
		_, err := svc.SignUp(ctx, &SignUpRequest{Email: "not-an-email", Password: "secret123"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrInvalidParams.Code, apperrors.GetAppError(err).Code)
	})

	t.Run("上线不存在时不创建身份用户", func(t *testing.T) {
		_, svc, provider := setupAuthTest(t)
		missing := int64(9999)
		_, err := svc.SignUp(ctx, &SignUpRequest{
			Email:    "b@example.com",
			Password: "secret123",
			UplineID: &missing,
		})
		assert.ErrorIs(t, err, apperrors.ErrUplineNotFound)

		_, err = provider.SignInWithPassword(ctx, "b@example.com", "secret123")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestAuthService_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("已审核会员登录", func(t *testing.T) {
		db, svc, _ := setupAuthTest(t)
		signUpMember(t, db, svc, "ok@example.com", models.MemberStatusApproved, nil)

		result, err := svc.SignIn(ctx, "ok@example.com", "secret123")
		require.NoError(t, err)
		require.NotNil(t, result.Token)
		assert.NotEmpty(t, result.Token.AccessToken)
		require.NotNil(t, result.Member)
		assert.Equal(t, models.MemberStatusApproved, result.Member.Status)
	})

	t.Run("待审核会员禁止登录", func(t *testing.T) {
		db, svc, _ := setupAuthTest(t)
		signUpMember(t, db, svc, "pending@example.com", models.MemberStatusPending, nil)

		_, err := svc.SignIn(ctx, "pending@example.com", "secret123")
		assert.ErrorIs(t, err, apperrors.ErrAccountPending)
	})

	t.Run("已拒绝会员禁止登录", func(t *testing.T) {
		db, svc, _ := setupAuthTest(t)
		signUpMember(t, db, svc, "rejected@example.com", models.MemberStatusRejected, nil)

		_, err := svc.SignIn(ctx, "rejected@example.com", "secret123")
		assert.ErrorIs(t, err, apperrors.ErrAccountRejected)
	})

	t.Run("管理员登录", func(t *testing.T) {
		_, svc, _ := setupAuthTest(t)
		_, err := svc.SignUp(ctx, &SignUpRequest{
			Email:    "admin@example.com",
			Password: "secret123",
			Role:     models.RoleAdmin,
		})
		require.NoError(t, err)

		result, err := svc.SignIn(ctx, "admin@example.com", "secret123")
		require.NoError(t, err)
		assert.Nil(t, result.Member)
		assert.Equal(t, models.RoleAdmin, result.Profile.Role)
	})

	t.Run("密码错误", func(t *testing.T) {
		db, svc, _ := setupAuthTest(t)
		signUpMember(t, db, svc, "ok@example.com", models.MemberStatusApproved, nil)

		_, err := svc.SignIn(ctx, "ok@example.com", "wrong-pass")
		assert.ErrorIs(t, err, apperrors.ErrSignInFailed)
	})
}

func TestAuthService_Me(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()

	account := signUpMember(t, db, svc, "me@example.com", models.MemberStatusApproved, nil)

	me, err := svc.Me(ctx, account.Profile.AuthID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Profile.Email)
	require.NotNil(t, me.Member)

	_, err = svc.Me(ctx, "missing-auth-id")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestAuthService_Invite(t *testing.T) {
	ctx := context.Background()

	t.Run("邀请会员", func(t *testing.T) {
		_, svc, provider := setupAuthTest(t)
		account, err := svc.Invite(ctx, &InviteRequest{
			Email:     "invited@example.com",
			FirstName: "Ana",
		})
		require.NoError(t, err)
		require.NotNil(t, account.Member)
		assert.Equal(t, models.MemberStatusPending, account.Member.Status)
		assert.Contains(t, provider.InvitedEmails, "invited@example.com")
	})

	t.Run("推荐位满时不发出邀请", func(t *testing.T) {
		db, svc, provider := setupAuthTest(t)
		root := &models.Member{AuthID: "root", Status: models.MemberStatusApproved}
		db.Create(root)
		for i := 0; i < models.MaxSquadSize; i++ {
			db.Create(&models.Member{
				AuthID:   strings.Repeat("a", i+1),
				UplineID: &root.ID,
				Status:   models.MemberStatusApproved,
			})
		}

		_, err := svc.Invite(ctx, &InviteRequest{Email: "late@example.com", UplineID: &root.ID})
		assert.ErrorIs(t, err, apperrors.ErrSquadFull)
		assert.NotContains(t, provider.InvitedEmails, "late@example.com")
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()

	account := signUpMember(t, db, svc, "chg@example.com", models.MemberStatusApproved, nil)

	t.Run("修改后可用新密码登录", func(t *testing.T) {
		err := svc.ChangePassword(ctx, account.Profile.AuthID, "newsecret")
		require.NoError(t, err)

		_, err = svc.SignIn(ctx, "chg@example.com", "newsecret")
		require.NoError(t, err)
	})

	t.Run("密码过短", func(t *testing.T) {
		err := svc.ChangePassword(ctx, account.Profile.AuthID, "123")
		assert.ErrorIs(t, err, apperrors.ErrPasswordTooShort)
	})

	t.Run("用户不存在", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "missing-user", "newsecret")
		assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	})
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	db, svc, provider := setupAuthTest(t)
	ctx := context.Background()

	signUpMember(t, db, svc, "reset@example.com", models.MemberStatusApproved, nil)

	require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com"))
	assert.Contains(t, provider.ResetEmails, "reset@example.com")

	// 未注册邮箱同样返回成功
	require.NoError(t, svc.RequestPasswordReset(ctx, "unknown@example.com"))
}

func TestAuthService_DeleteMember(t *testing.T) {
	db, svc, _ := setupAuthTest(t)
	ctx := context.Background()

	account := signUpMember(t, db, svc, "del@example.com", models.MemberStatusApproved, nil)

	err := svc.DeleteMember(ctx, account.Member.ID)
	require.NoError(t, err)

	var members, profiles int64
	db.Model(&models.Member{}).Count(&members)
	db.Model(&models.Profile{}).Count(&profiles)
	assert.Zero(t, members)
	assert.Zero(t, profiles)

	// 身份用户已删除，原密码无法登录
	_, err = svc.SignIn(ctx, "del@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrSignInFailed)

	err = svc.DeleteMember(ctx, account.Member.ID)
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestInviteService_GetInviteInfo(t *testing.T) {
	svc := NewInviteService("https://app.example.com/signup")

	info, err := svc.GetInviteInfo(42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.MemberID)
	assert.Equal(t, "https://app.example.com/signup?upline=42", info.Link)
	assert.True(t, strings.HasPrefix(info.QRCode, "data:image/png;base64,"))
}
