// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/models"
)

// ProfileRepository 账号档案仓储
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建账号档案仓储
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create 创建账号档案
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// GetByAuthID 根据身份标识获取账号档案
func (r *ProfileRepository) GetByAuthID(ctx context.Context, authID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByEmail 根据邮箱获取账号档案
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ExistsByEmail 检查邮箱是否已注册
func (r *ProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// Update 更新账号档案
func (r *ProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// DeleteByAuthID 根据身份标识删除账号档案
func (r *ProfileRepository) DeleteByAuthID(ctx context.Context, authID string) error {
	return r.db.WithContext(ctx).Where("auth_id = ?", authID).Delete(&models.Profile{}).Error
}
