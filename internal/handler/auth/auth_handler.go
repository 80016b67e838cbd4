// Package auth 提供认证相关的 HTTP Handler
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/focomkt/sales-hub-backend/internal/common/handler"
	"github.com/focomkt/sales-hub-backend/internal/common/response"
	authsvc "github.com/focomkt/sales-hub-backend/internal/service/auth"
)

// Handler 认证处理器
type Handler struct {
	authService *authsvc.AuthService
}

// NewHandler 创建认证处理器
func NewHandler(authSvc *authsvc.AuthService) *Handler {
	return &Handler{authService: authSvc}
}

// RegisterRoutes 注册公开认证路由
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	auth := g.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/reset-password", h.ResetPassword)
	}
}

// RegisterProtectedRoutes 注册需要登录的认证路由
func (h *Handler) RegisterProtectedRoutes(g *gin.RouterGroup) {
	auth := g.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.POST("/logout", h.Logout)
		auth.POST("/invite", h.Invite)
		auth.POST("/change-password", h.ChangePassword)
	}
}

// SignUp 注册账号
// @Summary 注册账号
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body auth.SignUpRequest true "请求参数"
// @Success 201 {object} auth.Account
// @Failure 400 {object} response.ErrorBody
// @Router /api/v1/auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req authsvc.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	account, err := h.authService.SignUp(c.Request.Context(), &req)
	handler.MustSucceedCreated(c, err, account)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "请求参数"
// @Success 200 {object} auth.SignInResult
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	handler.MustSucceed(c, err, result)
}

// Me 获取当前登录账号
// @Summary 获取当前登录账号
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.Account
// @Failure 401 {object} response.ErrorBody
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	authID, ok := handler.RequireAuthID(c)
	if !ok {
		return
	}

	account, err := h.authService.Me(c.Request.Context(), authID)
	handler.MustSucceed(c, err, account)
}

// Logout 注销
// @Summary 注销
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

	err := h.authService.SignOut(c.Request.Context(), token)
	handler.MustSucceed(c, err, gin.H{"message": "已注销"})
}

// Invite 邀请新账号（管理员）
// @Summary 邀请新账号
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body auth.InviteRequest true "请求参数"
// @Success 201 {object} auth.Account
// @Failure 403 {object} response.ErrorBody
// @Router /api/v1/auth/invite [post]
func (h *Handler) Invite(c *gin.Context) {
	if !handler.RequireAdmin(c) {
		return
	}

	var req authsvc.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	account, err := h.authService.Invite(c.Request.Context(), &req)
	handler.MustSucceedCreated(c, err, account)
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	AuthID      string `json:"auth_id" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword 修改指定账号的密码（管理员）
// @Summary 修改指定账号的密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ChangePasswordRequest true "请求参数"
// @Success 200 {object} map[string]string
// @Failure 403 {object} response.ErrorBody
// @Router /api/v1/auth/change-password [post]
func (h *Handler) ChangePassword(c *gin.Context) {
	if !handler.RequireAdmin(c) {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), req.AuthID, req.NewPassword); err != nil {
		handler.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "密码已更新"})
}

// ResetPasswordRequest 密码重置请求
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPassword 发送密码重置邮件
// @Summary 发送密码重置邮件
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "请求参数"
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/reset-password [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		handler.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "重置邮件已发送"})
}
