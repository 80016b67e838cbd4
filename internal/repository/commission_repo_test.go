// Package repository 佣金仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/focomkt/sales-hub-backend/internal/models"
)

func setupCommissionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Commission{}, &models.Member{}, &models.Lead{})
	require.NoError(t, err)

	return db
}

func makeCommission(memberID, leadID int64, value float64, month, year int) *models.Commission {
	return &models.Commission{
		MemberID:             memberID,
		LeadID:               leadID,
		SaleValue:            value,
		CommissionPercentage: models.CommissionRateDirect,
		CommissionValue:      value * models.CommissionRateDirect,
		SaleDate:             time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC),
		Month:                month,
		Year:                 year,
	}
}

func TestCommissionRepository_Create(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	commission := makeCommission(1, 1, 1000, 3, 2026)

	err := repo.Create(ctx, commission)
	require.NoError(t, err)
	assert.NotZero(t, commission.ID)
}

func TestCommissionRepository_CreateBatch(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	commissions := []*models.Commission{
		makeCommission(1, 1, 1000, 3, 2026),
		{
			MemberID:             2,
			LeadID:               1,
			SaleValue:            1000,
			CommissionPercentage: models.CommissionRateUpline,
			CommissionValue:      1000 * models.CommissionRateUpline,
			SaleDate:             time.Now(),
			Month:                3,
			Year:                 2026,
		},
	}

	err := repo.CreateBatch(ctx, commissions)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Commission{}).Where("lead_id = ?", 1).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestCommissionRepository_CreateBatch_Empty(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)

	err := repo.CreateBatch(context.Background(), nil)
	assert.NoError(t, err)
}

func TestCommissionRepository_GetByID(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	commission := makeCommission(1, 1, 1000, 3, 2026)
	db.Create(commission)

	found, err := repo.GetByID(ctx, commission.ID)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, found.CommissionValue, 0.001)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCommissionRepository_List_Filters(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	db.Create(makeCommission(1, 1, 1000, 3, 2026))
	db.Create(makeCommission(1, 2, 500, 4, 2026))
	db.Create(makeCommission(2, 1, 1000, 3, 2026))

	t.Run("按会员过滤", func(t *testing.T) {
		_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"member_id": int64(1)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("按月份过滤", func(t *testing.T) {
		_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"month": 3, "year": 2026})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("按支付状态过滤", func(t *testing.T) {
		_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"is_paid": false})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

func TestCommissionRepository_UpdateForMemberPeriod(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	db.Create(makeCommission(1, 1, 1000, 3, 2026))
	db.Create(makeCommission(1, 2, 500, 3, 2026))
	db.Create(makeCommission(1, 3, 800, 4, 2026))
	db.Create(makeCommission(2, 1, 1000, 3, 2026))

	paymentDate := time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)
	affected, err := repo.UpdateForMemberPeriod(ctx, 1, 3, 2026, map[string]interface{}{
		"is_paid":      true,
		"payment_date": paymentDate,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// 其他会员和其他月份不受影响
	list, _ := repo.ListForMemberPeriod(ctx, 1, 3, 2026)
	for _, c := range list {
		assert.True(t, c.IsPaid)
		require.NotNil(t, c.PaymentDate)
	}

	other, _ := repo.ListForMemberPeriod(ctx, 1, 4, 2026)
	require.Len(t, other, 1)
	assert.False(t, other[0].IsPaid)
}

func TestCommissionRepository_UpdateForMemberPeriod_NoMatch(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	affected, err := repo.UpdateForMemberPeriod(ctx, 1, 12, 2099, map[string]interface{}{"is_paid": true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestCommissionRepository_UpdateAllForMember(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	db.Create(makeCommission(1, 1, 1000, 3, 2026))
	db.Create(makeCommission(1, 2, 500, 4, 2026))
	db.Create(makeCommission(2, 1, 1000, 3, 2026))

	affected, err := repo.UpdateAllForMember(ctx, 1, map[string]interface{}{"is_paid": true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}

func TestCommissionRepository_GetMonthly(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	db.Create(makeCommission(1, 1, 1000, 3, 2026)) // 30
	db.Create(makeCommission(1, 2, 500, 3, 2026))  // 15
	db.Create(makeCommission(1, 3, 800, 2, 2026))  // 24
	db.Create(makeCommission(2, 4, 999, 3, 2026))  // 其他会员

	rows, err := repo.GetMonthly(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 按年月降序
	assert.Equal(t, 3, rows[0].Month)
	assert.InDelta(t, 45.0, rows[0].TotalCommission, 0.001)
	assert.Equal(t, 2, rows[1].Month)
	assert.InDelta(t, 24.0, rows[1].TotalCommission, 0.001)
}


func TestCommissionRepository_Delete(t *testing.T) {
	db := setupCommissionTestDB(t)
	repo := NewCommissionRepository(db)
	ctx := context.Background()

	commission := makeCommission(1, 1, 1000, 3, 2026)
	db.Create(commission)

	err := repo.Delete(ctx, commission.ID)
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, commission.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
