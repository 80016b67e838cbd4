// Package jwt JWT令牌管理单元测试
package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestManager 创建测试用的 JWT Manager
func setupTestManager() *Manager {
	config := &Config{
		Secret:            "test-secret-key-for-jwt-token-signing",
		AccessExpireTime:  15 * time.Minute,
		RefreshExpireTime: 7 * 24 * time.Hour,
		Issuer:            "test-issuer",
	}
	return NewManager(config)
}

func TestNewManager(t *testing.T) {
	config := &Config{
		Secret:            "secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "test",
	}

	manager := NewManager(config)
	assert.NotNil(t, manager)
	assert.Equal(t, config, manager.config)
}

func TestManager_GenerateTokenPair_Success(t *testing.T) {
	manager := setupTestManager()

	tests := []struct {
		name     string
		memberID int64
		authID   string
		role     string
	}{
		{"成员令牌", 12345, "auth-uuid-1", "member"},
		{"管理员令牌", 99999, "auth-uuid-2", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenPair, err := manager.GenerateTokenPair(tt.memberID, tt.authID, tt.role)
			require.NoError(t, err)
			assert.NotNil(t, tokenPair)
			assert.NotEmpty(t, tokenPair.AccessToken)
			assert.NotEmpty(t, tokenPair.RefreshToken)
			assert.Greater(t, tokenPair.ExpiresAt, time.Now().Unix())

			// 验证 access token 和 refresh token 不同
			assert.NotEqual(t, tokenPair.AccessToken, tokenPair.RefreshToken)

			// 验证可以解析 access token
			claims, err := manager.ParseToken(tokenPair.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, tt.memberID, claims.MemberID)
			assert.Equal(t, tt.authID, claims.AuthID)
			assert.Equal(t, tt.role, claims.Role)

			// 验证可以解析 refresh token
			refreshClaims, err := manager.ParseToken(tokenPair.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, tt.memberID, refreshClaims.MemberID)
		})
	}
}

func TestManager_GenerateTokenPair_ExpiryTime(t *testing.T) {
	manager := setupTestManager()

	tokenPair, err := manager.GenerateTokenPair(123, "auth-1", "member")
	require.NoError(t, err)

	// 验证 ExpiresAt 大约是 15 分钟后
	expectedExpireAt := time.Now().Add(15 * time.Minute).Unix()
	assert.InDelta(t, expectedExpireAt, tokenPair.ExpiresAt, 5) // 允许5秒误差
}

func TestManager_GenerateAccessToken_Success(t *testing.T) {
	manager := setupTestManager()

	memberID := int64(12345)
	authID := "auth-uuid-x"
	role := "member"

	token, expiresAt, err := manager.GenerateAccessToken(memberID, authID, role)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, memberID, claims.MemberID)
	assert.Equal(t, authID, claims.AuthID)
	assert.Equal(t, role, claims.Role)
}

func TestManager_ParseToken_Success(t *testing.T) {
	manager := setupTestManager()

	token, _, err := manager.GenerateAccessToken(99999, "auth-parse", "admin")
	require.NoError(t, err)

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(99999), claims.MemberID)
	assert.Equal(t, "auth-parse", claims.AuthID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, "auth-parse", claims.Subject)
}

func TestManager_ParseToken_InvalidToken(t *testing.T) {
	manager := setupTestManager()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"空令牌", "", ErrTokenMalformed},
		{"格式错误", "not-a-jwt-token", ErrTokenMalformed},
		{"篡改的令牌", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.tampered.signature", ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := manager.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestManager_ParseToken_Expired(t *testing.T) {
	// 创建已过期的令牌
	expiredManager := NewManager(&Config{
		Secret:            "test-secret-key-for-jwt-token-signing",
		AccessExpireTime:  -time.Hour,
		RefreshExpireTime: -time.Hour,
		Issuer:            "test-issuer",
	})

	token, _, err := expiredManager.GenerateAccessToken(123, "auth-exp", "member")
	require.NoError(t, err)

	claims, err := expiredManager.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestManager_ParseToken_WrongSecret(t *testing.T) {
	manager := setupTestManager()
	otherManager := NewManager(&Config{
		Secret:            "a-completely-different-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "test-issuer",
	})

	token, _, err := manager.GenerateAccessToken(123, "auth-ws", "member")
	require.NoError(t, err)

	claims, err := otherManager.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, claims)
}

func TestManager_RefreshToken(t *testing.T) {
	manager := setupTestManager()

	tokenPair, err := manager.GenerateTokenPair(456, "auth-refresh", "member")
	require.NoError(t, err)

	newPair, err := manager.RefreshToken(tokenPair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)

	claims, err := manager.ParseToken(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(456), claims.MemberID)
	assert.Equal(t, "auth-refresh", claims.AuthID)
	assert.Equal(t, "member", claims.Role)
}

func TestManager_RefreshToken_Invalid(t *testing.T) {
	manager := setupTestManager()

	newPair, err := manager.RefreshToken("garbage-token")
	assert.Error(t, err)
	assert.Nil(t, newPair)
}

func TestManager_ValidateToken(t *testing.T) {
	manager := setupTestManager()

	token, _, err := manager.GenerateAccessToken(789, "auth-valid", "member")
	require.NoError(t, err)

	ok, err := manager.ValidateToken(token)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = manager.ValidateToken("invalid")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestManager_TokenStructure(t *testing.T) {
	manager := setupTestManager()

	token, _, err := manager.GenerateAccessToken(1, "auth-struct", "member")
	require.NoError(t, err)

	// JWT 应该由三部分组成
	parts := strings.Split(token, ".")
	assert.Len(t, parts, 3)
}
