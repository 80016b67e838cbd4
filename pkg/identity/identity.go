// Package identity 对接外部身份服务（注册、登录、邀请、密码管理）
package identity

import (
	"context"
	"errors"
)

// 预定义错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password does not meet requirements")
)

// User 身份服务中的用户
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session 身份服务返回的会话
type Session struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Provider 身份服务接口
type Provider interface {
	// SignUp 注册新用户，返回用户信息
	SignUp(ctx context.Context, email, password string) (*User, error)
	// SignInWithPassword 使用邮箱密码登录
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// InviteByEmail 向邮箱发送邀请，创建受邀用户
	InviteByEmail(ctx context.Context, email string) (*User, error)
	// UpdatePassword 修改指定用户的密码
	UpdatePassword(ctx context.Context, userID, newPassword string) error
	// SendPasswordReset 发送密码重置邮件
	SendPasswordReset(ctx context.Context, email, redirectURL string) error
	// SignOut 注销指定用户的会话
	SignOut(ctx context.Context, accessToken string) error
	// DeleteUser 删除用户
	DeleteUser(ctx context.Context, userID string) error
}
