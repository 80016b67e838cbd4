// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/models"
)

// LeadRepository 线索仓储
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository 创建线索仓储
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create 创建线索
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// GetByID 根据 ID 获取线索
func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// List 获取线索列表
func (r *LeadRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Lead, int64, error) {
	var leads []*models.Lead
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Lead{})

	// 应用过滤条件
	if memberID, ok := filters["member_id"].(int64); ok && memberID > 0 {
		query = query.Where("member_id = ?", memberID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

// ListByMemberID 获取某会员的全部线索
func (r *LeadRepository) ListByMemberID(ctx context.Context, memberID int64) ([]*models.Lead, error) {
	var leads []*models.Lead
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&leads).Error
	return leads, err
}

// UpdateFields 更新线索指定字段
func (r *LeadRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Lead{}).
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

// Delete 删除线索
func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
