// Package errors 定义业务错误码和错误处理
package errors

import (
	"fmt"
	"net/http"
)

// AppError 应用错误
// Status 为对外的 HTTP 状态码，Code 为业务错误码，二者独立维护：
// 同一状态码下可以细分多个业务错误
type AppError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(status, code int, message string) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(status, code int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Status:  e.Status,
		Code:    e.Code,
		Message: message,
		Err:     e.Err,
	}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Status:  e.Status,
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 提取应用错误，非应用错误统一归为未知错误
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// IsNotFound 是否为资源不存在错误
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Status == http.StatusNotFound
	}
	return false
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(http.StatusInternalServerError, 1000, "未知错误")
	ErrInvalidParams   = New(http.StatusBadRequest, 1001, "参数错误")
	ErrNotFound        = New(http.StatusNotFound, 1002, "资源不存在")
	ErrAlreadyExists   = New(http.StatusBadRequest, 1003, "资源已存在")
	ErrDatabaseError   = New(http.StatusInternalServerError, 1004, "数据库错误")
	ErrCacheError      = New(http.StatusInternalServerError, 1005, "缓存错误")
	ErrInternalError   = New(http.StatusInternalServerError, 1006, "内部错误")
	ErrExternalService = New(http.StatusInternalServerError, 1007, "外部服务错误")
	ErrRateLimitExceed = New(http.StatusTooManyRequests, 1008, "请求过于频繁")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(http.StatusUnauthorized, 2000, "未登录")
	ErrTokenExpired     = New(http.StatusUnauthorized, 2001, "登录已过期")
	ErrTokenInvalid     = New(http.StatusUnauthorized, 2002, "无效的令牌")
	ErrPermissionDenied = New(http.StatusForbidden, 2003, "权限不足")
	ErrSignInFailed     = New(http.StatusBadRequest, 2004, "邮箱或密码错误")
	ErrAccountPending   = New(http.StatusForbidden, 2005, "账号尚未通过审核")
	ErrAccountRejected  = New(http.StatusForbidden, 2006, "账号已被管理员拒绝")
	ErrPasswordTooShort = New(http.StatusBadRequest, 2007, "新密码至少需要 6 个字符")
	ErrEmailExists      = New(http.StatusBadRequest, 2008, "邮箱已被注册")
)

// 会员错误码 (3000-3999)
var (
	ErrMemberNotFound  = New(http.StatusNotFound, 3000, "会员不存在")
	ErrProfileNotFound = New(http.StatusNotFound, 3001, "账号档案不存在")
	ErrUplineNotFound  = New(http.StatusBadRequest, 3002, "无效的上线：根会员不存在")
	ErrSquadFull       = New(http.StatusBadRequest, 3003, "该上线的直属成员已达 12 人上限")
	ErrRootQuotaFull   = New(http.StatusBadRequest, 3004, "根会员数量已达 12 人上限")
	ErrInvalidStatus   = New(http.StatusBadRequest, 3005, "无效的审核状态")
)

// 线索错误码 (4000-4999)
var (
	ErrLeadNotFound      = New(http.StatusNotFound, 4000, "线索不存在")
	ErrInvalidLeadStatus = New(http.StatusBadRequest, 4001, "无效的线索状态")
)

// 佣金错误码 (5000-5999)
var (
	ErrCommissionNotFound = New(http.StatusNotFound, 5000, "佣金记录不存在")
	ErrNoCommissionsMatch = New(http.StatusNotFound, 5001, "未找到符合条件的佣金记录")
)
