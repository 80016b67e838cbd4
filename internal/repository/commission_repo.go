// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/models"
)

// CommissionRepository 佣金仓储
type CommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓储
func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// Create 创建佣金记录
func (r *CommissionRepository) Create(ctx context.Context, commission *models.Commission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

// CreateBatch 批量创建佣金记录
func (r *CommissionRepository) CreateBatch(ctx context.Context, commissions []*models.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&commissions).Error
}

// GetByID 根据 ID 获取佣金记录
func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (*models.Commission, error) {
	var commission models.Commission
	err := r.db.WithContext(ctx).First(&commission, id).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

// List 获取佣金记录列表
func (r *CommissionRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Commission, int64, error) {
	var commissions []*models.Commission
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Commission{})

	// 应用过滤条件
	if memberID, ok := filters["member_id"].(int64); ok && memberID > 0 {
		query = query.Where("member_id = ?", memberID)
	}
	if leadID, ok := filters["lead_id"].(int64); ok && leadID > 0 {
		query = query.Where("lead_id = ?", leadID)
	}
	if isPaid, ok := filters["is_paid"].(bool); ok {
		query = query.Where("is_paid = ?", isPaid)
	}
	if month, ok := filters["month"].(int); ok && month > 0 {
		query = query.Where("month = ?", month)
	}
	if year, ok := filters["year"].(int); ok && year > 0 {
		query = query.Where("year = ?", year)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Order("sale_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&commissions).Error; err != nil {
		return nil, 0, err
	}

	return commissions, total, nil
}

// ListByMemberID 获取某会员的全部佣金记录
func (r *CommissionRepository) ListByMemberID(ctx context.Context, memberID int64) ([]*models.Commission, error) {
	var commissions []*models.Commission
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("sale_date DESC").
		Find(&commissions).Error
	return commissions, err
}

// UpdateFields 更新佣金记录指定字段
func (r *CommissionRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateForMemberPeriod 批量更新某会员某月份的佣金记录，返回受影响行数
func (r *CommissionRepository) UpdateForMemberPeriod(ctx context.Context, memberID int64, month, year int, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("member_id = ? AND month = ? AND year = ?", memberID, month, year).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// UpdateAllForMember 批量更新某会员的全部佣金记录，返回受影响行数
func (r *CommissionRepository) UpdateAllForMember(ctx context.Context, memberID int64, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Commission{}).
		Where("member_id = ?", memberID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// ListForMemberPeriod 获取某会员某月份的佣金记录
func (r *CommissionRepository) ListForMemberPeriod(ctx context.Context, memberID int64, month, year int) ([]*models.Commission, error) {
	var commissions []*models.Commission
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND month = ? AND year = ?", memberID, month, year).
		Order("sale_date DESC").
		Find(&commissions).Error
	return commissions, err
}

// GetMonthly 按年月聚合某会员的佣金总额
func (r *CommissionRepository) GetMonthly(ctx context.Context, memberID int64) ([]*models.MonthlyCommission, error) {
	var rows []*models.MonthlyCommission
	err := r.db.WithContext(ctx).Model(&models.Commission{}).
		Select("year, month, COALESCE(SUM(commission_value), 0) as total_commission").
		Where("member_id = ?", memberID).
		Group("year, month").
		Order("year DESC, month DESC").
		Scan(&rows).Error
	return rows, err
}

// Delete 删除佣金记录
func (r *CommissionRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Commission{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
