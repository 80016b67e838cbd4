// Package identity 对接外部身份服务
package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// mockUser 内存中的用户记录
type mockUser struct {
	id           string
	email        string
	passwordHash []byte
	invited      bool
}

// Mock 内存实现的身份服务，用于开发和测试
type Mock struct {
	mu      sync.RWMutex
	byEmail map[string]*mockUser
	byID    map[string]*mockUser

	// InvitedEmails 记录发出的邀请，便于测试断言
	InvitedEmails []string
	// ResetEmails 记录发出的密码重置邮件
	ResetEmails []string
}

// NewMock 创建内存身份服务
func NewMock() *Mock {
	return &Mock{
		byEmail: make(map[string]*mockUser),
		byID:    make(map[string]*mockUser),
	}
}

// SignUp 注册新用户
func (m *Mock) SignUp(ctx context.Context, email, password string) (*User, error) {
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	u := &mockUser{
		id:           uuid.New().String(),
		email:        email,
		passwordHash: hash,
	}
	m.byEmail[email] = u
	m.byID[u.id] = u

	return &User{ID: u.id, Email: u.email}, nil
}

// SignInWithPassword 使用邮箱密码登录
func (m *Mock) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	m.mu.RLock()
	u, ok := m.byEmail[email]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Session{
		User:         User{ID: u.id, Email: u.email},
		AccessToken:  uuid.New().String(),
		RefreshToken: uuid.New().String(),
		ExpiresIn:    3600,
	}, nil
}

// InviteByEmail 向邮箱发送邀请
func (m *Mock) InviteByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}

	u := &mockUser{
		id:      uuid.New().String(),
		email:   email,
		invited: true,
	}
	m.byEmail[email] = u
	m.byID[u.id] = u
	m.InvitedEmails = append(m.InvitedEmails, email)

	return &User{ID: u.id, Email: u.email}, nil
}

// UpdatePassword 修改指定用户的密码
func (m *Mock) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	u.invited = false
	return nil
}

// SendPasswordReset 发送密码重置邮件
func (m *Mock) SendPasswordReset(ctx context.Context, email, redirectURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[email]; !ok {
		// 与真实服务一致：不暴露邮箱是否存在
		return nil
	}
	m.ResetEmails = append(m.ResetEmails, email)
	return nil
}

// SignOut 注销会话
func (m *Mock) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

// DeleteUser 删除用户
func (m *Mock) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.byEmail, u.email)
	delete(m.byID, userID)
	return nil
}
