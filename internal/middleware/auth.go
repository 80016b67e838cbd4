// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/focomkt/sales-hub-backend/internal/common/jwt"
	"github.com/focomkt/sales-hub-backend/internal/common/response"
	"github.com/focomkt/sales-hub-backend/internal/models"
)

// AuthConfig 认证配置
type AuthConfig struct {
	JWTManager *jwt.Manager
	Role       string // 期望的角色，为空则不限制
}

// 上下文键
const (
	ContextKeyMemberID = "member_id"
	ContextKeyAuthID   = "auth_id"
	ContextKeyRole     = "role"
	ContextKeyClaims   = "claims"
)

// Auth 认证中间件
func Auth(config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		claims, err := config.JWTManager.ParseToken(token)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				response.Unauthorized(c, "登录已过期，请重新登录")
			} else {
				response.Unauthorized(c, "无效的令牌")
			}
			c.Abort()
			return
		}

		// 验证角色
		if config.Role != "" && claims.Role != config.Role {
			response.Forbidden(c, "无权访问")
			c.Abort()
			return
		}

		// 设置上下文
		c.Set(ContextKeyMemberID, claims.MemberID)
		c.Set(ContextKeyAuthID, claims.AuthID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// MemberAuth 会员认证中间件（任意已登录角色）
func MemberAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return Auth(&AuthConfig{
		JWTManager: jwtManager,
	})
}

// AdminAuth 管理员认证中间件
func AdminAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return Auth(&AuthConfig{
		JWTManager: jwtManager,
		Role:       models.RoleAdmin,
	})
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	// 优先从 Authorization 头获取
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 其次从查询参数获取
	token := c.Query("token")
	if token != "" {
		return token
	}

	// 最后从 Cookie 获取
	token, _ = c.Cookie("token")
	return token
}

// GetMemberID 从上下文获取会员 ID
func GetMemberID(c *gin.Context) int64 {
	memberID, exists := c.Get(ContextKeyMemberID)
	if !exists {
		return 0
	}
	return memberID.(int64)
}

// GetAuthID 从上下文获取身份标识
func GetAuthID(c *gin.Context) string {
	authID, exists := c.Get(ContextKeyAuthID)
	if !exists {
		return ""
	}
	return authID.(string)
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	role, exists := c.Get(ContextKeyRole)
	if !exists {
		return ""
	}
	return role.(string)
}

// GetClaims 从上下文获取完整的 Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	claims, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	return claims.(*jwt.Claims)
}

// IsAdmin 判断当前登录账号是否为管理员
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == models.RoleAdmin
}
