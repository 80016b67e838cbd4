package member

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
	"github.com/focomkt/sales-hub-backend/pkg/mailer"
)

// setupMemberTest 创建测试数据库与会员服务
func setupMemberTest(t *testing.T) (*gorm.DB, *MemberService, *mailer.Recorder) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Member{}, &models.Profile{})
	require.NoError(t, err)

	recorder := &mailer.Recorder{}
	svc := NewMemberService(
		repository.NewMemberRepository(db),
		repository.NewProfileRepository(db),
		recorder,
	)
	return db, svc, recorder
}

// seedApproved 写入一名已审核会员
func seedApproved(db *gorm.DB, authID string, uplineID *int64) *models.Member {
	member := &models.Member{
		AuthID:   authID,
		UplineID: uplineID,
		Status:   models.MemberStatusApproved,
	}
	db.Create(member)
	return member
}

func TestMemberService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("创建根会员", func(t *testing.T) {
		_, svc, _ := setupMemberTest(t)
		member, err := svc.Create(ctx, &CreateRequest{AuthID: "auth-1", FirstName: "Maria"})
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusPending, member.Status)
		assert.Nil(t, member.UplineID)
	})

	t.Run("挂靠根会员", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		root := seedApproved(db, "root", nil)

		member, err := svc.Create(ctx, &CreateRequest{AuthID: "auth-2", UplineID: &root.ID})
		require.NoError(t, err)
		require.NotNil(t, member.UplineID)
		assert.Equal(t, root.ID, *member.UplineID)
	})

	t.Run("上线不存在", func(t *testing.T) {
		_, svc, _ := setupMemberTest(t)
		missing := int64(9999)
		_, err := svc.Create(ctx, &CreateRequest{AuthID: "auth-3", UplineID: &missing})
		assert.ErrorIs(t, err, apperrors.ErrUplineNotFound)
	})

	t.Run("上线不是根会员", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		root := seedApproved(db, "root", nil)
		child := seedApproved(db, "child", &root.ID)

		_, err := svc.Create(ctx, &CreateRequest{AuthID: "auth-4", UplineID: &child.ID})
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrUplineNotFound.Code, appErr.Code)
	})

	t.Run("直属成员满员", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		root := seedApproved(db, "root", nil)
		for i := 0; i < models.MaxSquadSize; i++ {
			seedApproved(db, fmt.Sprintf("assoc-%d", i), &root.ID)
		}

		_, err := svc.Create(ctx, &CreateRequest{AuthID: "auth-5", UplineID: &root.ID})
		assert.ErrorIs(t, err, apperrors.ErrSquadFull)

		// 第 12 人以内可以正常加入
		count, _ := repository.NewMemberRepository(db).CountAssociates(ctx, root.ID)
		assert.Equal(t, int64(models.MaxSquadSize), count)
	})

	t.Run("根会员名额满员", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		for i := 0; i < models.MaxSquadSize; i++ {
			seedApproved(db, fmt.Sprintf("root-%d", i), nil)
		}

		_, err := svc.Create(ctx, &CreateRequest{AuthID: "auth-6"})
		assert.ErrorIs(t, err, apperrors.ErrRootQuotaFull)
	})
}

func TestMemberService_GetDetail(t *testing.T) {
	db, svc, _ := setupMemberTest(t)
	ctx := context.Background()

	root := seedApproved(db, "root", nil)
	child := seedApproved(db, "child", &root.ID)

	// 详情附带上线
	detail, err := svc.GetDetail(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Upline)
	assert.Equal(t, root.ID, detail.Upline.ID)

	// 根会员没有上线
	rootDetail, err := svc.GetDetail(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, rootDetail.Upline)

	_, err = svc.GetDetail(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestMemberService_GetByStatus(t *testing.T) {
	db, svc, _ := setupMemberTest(t)
	ctx := context.Background()

	db.Create(&models.Member{AuthID: "p1", Status: models.MemberStatusPending})
	seedApproved(db, "a1", nil)

	pending, err := svc.GetByStatus(ctx, models.MemberStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = svc.GetByStatus(ctx, "waiting")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestMemberService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("普通更新忽略聚合计数", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		member := seedApproved(db, "a1", nil)

		firstName := "Nova"
		sales := 99999.0
		updated, err := svc.Update(ctx, member.ID, &UpdateRequest{
			FirstName:  &firstName,
			TotalSales: &sales,
		}, false)
		require.NoError(t, err)
		assert.Equal(t, "Nova", updated.FirstName)
		assert.Zero(t, updated.TotalSales)
	})

	t.Run("管理员可改聚合计数与状态", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		member := seedApproved(db, "a2", nil)

		sales := 500.0
		status := models.MemberStatusRejected
		updated, err := svc.Update(ctx, member.ID, &UpdateRequest{
			TotalSales: &sales,
			Status:     &status,
		}, true)
		require.NoError(t, err)
		assert.InDelta(t, 500, updated.TotalSales, 0.001)
		assert.Equal(t, models.MemberStatusRejected, updated.Status)
	})

	t.Run("会员不存在", func(t *testing.T) {
		_, svc, _ := setupMemberTest(t)
		firstName := "X"
		_, err := svc.Update(ctx, 9999, &UpdateRequest{FirstName: &firstName}, false)
		assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
	})
}

func TestMemberService_Review(t *testing.T) {
	ctx := context.Background()

	t.Run("审核通过并发送通知", func(t *testing.T) {
		db, svc, recorder := setupMemberTest(t)
		member := &models.Member{AuthID: "p1", FirstName: "Maria", Status: models.MemberStatusPending}
		db.Create(member)
		db.Create(&models.Profile{AuthID: "p1", Email: "maria@example.com", Role: models.RoleMember})

		approved, err := svc.Approve(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusApproved, approved.Status)

		require.Len(t, recorder.Sent, 1)
		assert.Equal(t, "maria@example.com", recorder.Sent[0].To)
	})

	t.Run("审核拒绝", func(t *testing.T) {
		db, svc, _ := setupMemberTest(t)
		member := &models.Member{AuthID: "p2", Status: models.MemberStatusPending}
		db.Create(member)

		rejected, err := svc.Reject(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusRejected, rejected.Status)
	})

	t.Run("档案缺失不影响审核", func(t *testing.T) {
		db, svc, recorder := setupMemberTest(t)
		member := &models.Member{AuthID: "p3", Status: models.MemberStatusPending}
		db.Create(member)

		approved, err := svc.Approve(ctx, member.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusApproved, approved.Status)
		assert.Empty(t, recorder.Sent)
	})

	t.Run("会员不存在", func(t *testing.T) {
		_, svc, _ := setupMemberTest(t)
		_, err := svc.Approve(ctx, 9999)
		assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
	})
}

func TestMemberService_MarkTutorialSeen(t *testing.T) {
	db, svc, _ := setupMemberTest(t)
	ctx := context.Background()

	member := seedApproved(db, "a1", nil)
	require.False(t, member.HasSeenTutorial)

	updated, err := svc.MarkTutorialSeen(ctx, member.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasSeenTutorial)

	_, err = svc.MarkTutorialSeen(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestMemberService_Delete(t *testing.T) {
	db, svc, _ := setupMemberTest(t)
	ctx := context.Background()

	member := seedApproved(db, "a1", nil)

	err := svc.Delete(ctx, member.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, member.ID)
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}
