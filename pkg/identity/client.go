// Package identity 对接外部身份服务
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config 身份服务客户端配置
type Config struct {
	BaseURL    string // 身份服务地址
	ServiceKey string // 服务端密钥
	Timeout    int    // 请求超时（秒）
}

// Client 身份服务 HTTP 客户端
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient 创建身份服务客户端
func NewClient(cfg *Config) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// errorResponse 身份服务错误响应
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Error   string `json:"error"`
}

// do 执行请求并解析响应
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// mapError 将身份服务错误映射为预定义错误
func (c *Client) mapError(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)
	msg := er.Message
	if msg == "" {
		msg = er.Error
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized:
		if msg == "User already registered" || msg == "Email address already registered" {
			return ErrEmailTaken
		}
		return ErrInvalidCredentials
	case http.StatusNotFound:
		return ErrUserNotFound
	case http.StatusUnprocessableEntity:
		if msg == "User already registered" {
			return ErrEmailTaken
		}
		return ErrWeakPassword
	default:
		return fmt.Errorf("identity service returned %d: %s", status, msg)
	}
}

// signUpResponse 注册响应
// 开启邮箱确认时直接返回用户对象，否则返回带 user 的会话
type signUpResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	User  User   `json:"user"`
}

// SignUp 注册新用户
func (c *Client) SignUp(ctx context.Context, email, password string) (*User, error) {
	var resp signUpResponse
	err := c.do(ctx, http.MethodPost, "/signup", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.User.ID != "" {
		return &resp.User, nil
	}
	return &User{ID: resp.ID, Email: resp.Email}, nil
}

// SignInWithPassword 使用邮箱密码登录
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// InviteByEmail 向邮箱发送邀请
func (c *Client) InviteByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/invite", map[string]string{
		"email": email,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword 修改指定用户的密码
func (c *Client) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID), map[string]string{
		"password": newPassword,
	}, nil)
}

// SendPasswordReset 发送密码重置邮件
func (c *Client) SendPasswordReset(ctx context.Context, email, redirectURL string) error {
	body := map[string]string{"email": email}
	path := "/recover"
	if redirectURL != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectURL)
	}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// SignOut 注销会话
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return c.mapError(resp.StatusCode, body)
	}
	return nil
}

// DeleteUser 删除用户
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil, nil)
}
