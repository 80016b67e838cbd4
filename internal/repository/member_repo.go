// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/models"
)

// MemberRepository 会员仓储
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create 创建会员
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID 根据 ID 获取会员
func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByIDWithUpline 根据 ID 获取会员（包含上线）
func (r *MemberRepository) GetByIDWithUpline(ctx context.Context, id int64) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Preload("Upline").First(&member, id).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByAuthID 根据身份标识获取会员
func (r *MemberRepository) GetByAuthID(ctx context.Context, authID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// List 获取会员列表
func (r *MemberRepository) List(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Member{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// ListByStatus 根据审核状态获取会员列表
func (r *MemberRepository) ListByStatus(ctx context.Context, status string) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&members).Error
	return members, err
}

// ListAssociates 获取某上线的直属成员
func (r *MemberRepository) ListAssociates(ctx context.Context, uplineID int64) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("upline_id = ?", uplineID).
		Order("total_sales DESC").
		Find(&members).Error
	return members, err
}

// ListRoots 获取所有根会员
func (r *MemberRepository) ListRoots(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("upline_id IS NULL").
		Order("total_sales DESC").
		Find(&members).Error
	return members, err
}

// CountAssociates 统计某上线的直属成员数量
func (r *MemberRepository) CountAssociates(ctx context.Context, uplineID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("upline_id = ?", uplineID).
		Count(&count).Error
	return count, err
}

// CountRoots 统计根会员数量
func (r *MemberRepository) CountRoots(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("upline_id IS NULL").
		Count(&count).Error
	return count, err
}

// CountByStatus 统计某审核状态的会员数量
func (r *MemberRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// UpdateFields 更新会员指定字段
func (r *MemberRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// UpdateStatus 更新会员审核状态
func (r *MemberRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementTotalSales 累加会员的累计销售额
func (r *MemberRepository) IncrementTotalSales(ctx context.Context, id int64, amount float64) error {
	return r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Update("total_sales", gorm.Expr("total_sales + ?", amount)).Error
}

// TopByCommission 按累计佣金排序的前 N 名会员，不限会员状态
func (r *MemberRepository) TopByCommission(ctx context.Context, limit int) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Order("total_commission DESC").
		Limit(limit).
		Find(&members).Error
	return members, err
}

// Delete 删除会员
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
