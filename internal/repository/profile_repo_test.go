// Package repository 账号档案仓储单元测试
package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/focomkt/sales-hub-backend/internal/models"
)

func setupProfileTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Profile{})
	require.NoError(t, err)

	return db
}

func TestProfileRepository_Create(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	profile := &models.Profile{
		AuthID:    "auth-1",
		Email:     "maria@example.com",
		Role:      models.RoleMember,
		FirstName: "Maria",
		LastName:  "Silva",
	}

	err := repo.Create(ctx, profile)
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)
}

func TestProfileRepository_GetByAuthID(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	db.Create(&models.Profile{AuthID: "auth-1", Email: "a@example.com", Role: models.RoleAdmin})

	found, err := repo.GetByAuthID(ctx, "auth-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, found.Role)

	_, err = repo.GetByAuthID(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_GetByEmail(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	db.Create(&models.Profile{AuthID: "auth-1", Email: "a@example.com", Role: models.RoleMember})

	found, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "auth-1", found.AuthID)
}

func TestProfileRepository_ExistsByEmail(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	db.Create(&models.Profile{AuthID: "auth-1", Email: "a@example.com", Role: models.RoleMember})

	exists, err := repo.ExistsByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProfileRepository_DeleteByAuthID(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	db.Create(&models.Profile{AuthID: "auth-1", Email: "a@example.com", Role: models.RoleMember})

	err := repo.DeleteByAuthID(ctx, "auth-1")
	require.NoError(t, err)

	_, err = repo.GetByAuthID(ctx, "auth-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
