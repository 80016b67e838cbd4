// Package commission 提供佣金相关的 HTTP Handler
package commission

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/focomkt/sales-hub-backend/internal/common/handler"
	"github.com/focomkt/sales-hub-backend/internal/common/response"
	commissionsvc "github.com/focomkt/sales-hub-backend/internal/service/commission"
)

// Handler 佣金处理器
type Handler struct {
	commissionService *commissionsvc.CommissionService
}

// NewHandler 创建佣金处理器
func NewHandler(commissionSvc *commissionsvc.CommissionService) *Handler {
	return &Handler{commissionService: commissionSvc}
}

// RegisterRoutes 注册佣金路由
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	commissions := g.Group("/commissions")
	{
		commissions.GET("/ping", h.Ping)
		commissions.GET("", h.List)
		commissions.GET("/monthly/:memberId", h.GetMonthly)
		commissions.GET("/:id", h.Get)
		commissions.POST("", h.Create)
		commissions.PUT("/:id", h.Update)
		commissions.PUT("/member/:memberId", h.UpdateForMember)
		commissions.DELETE("/:id", h.Delete)
	}
}

// Ping 佣金模块探活
// @Summary 佣金模块探活
// @Tags 佣金
// @Produce plain
// @Success 200 {string} string "pong"
// @Router /api/v1/commissions/ping [get]
func (h *Handler) Ping(c *gin.Context) {
	c.String(200, "pong")
}

// List 获取佣金列表
// @Summary 获取佣金列表
// @Tags 佣金
// @Produce json
// @Security Bearer
// @Param member_id query int false "会员ID"
// @Param lead_id query int false "线索ID"
// @Param is_paid query bool false "支付状态"
// @Param month query int false "月份"
// @Param year query int false "年份"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {array} models.Commission
// @Router /api/v1/commissions [get]
func (h *Handler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{}
	if memberID, err := strconv.ParseInt(c.Query("member_id"), 10, 64); err == nil {
		filters["member_id"] = memberID
	}
	if leadID, err := strconv.ParseInt(c.Query("lead_id"), 10, 64); err == nil {
		filters["lead_id"] = leadID
	}
	if isPaid, err := strconv.ParseBool(c.Query("is_paid")); err == nil {
		filters["is_paid"] = isPaid
	}
	if month, err := strconv.Atoi(c.Query("month")); err == nil {
		filters["month"] = month
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filters["year"] = year
	}

	commissions, total, err := h.commissionService.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	if handler.HandleError(c, err) {
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	response.Success(c, commissions)
}

// GetMonthly 按月汇总某会员的佣金
// @Summary 按月汇总某会员的佣金
// @Tags 佣金
// @Produce json
// @Security Bearer
// @Param memberId path int true "会员ID"
// @Success 200 {array} models.MonthlyCommission
// @Router /api/v1/commissions/monthly/{memberId} [get]
func (h *Handler) GetMonthly(c *gin.Context) {
	memberID, ok := handler.ParseParamID(c, "memberId", "会员")
	if !ok {
		return
	}

	rollup, err := h.commissionService.GetMonthly(c.Request.Context(), memberID)
	handler.MustSucceed(c, err, rollup)
}

// Get 获取单条佣金记录
// @Summary 获取单条佣金记录
// @Tags 佣金
// @Produce json
// @Security Bearer
// @Param id path int true "佣金ID"
// @Success 200 {object} models.Commission
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/commissions/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "佣金")
	if !ok {
		return
	}

	commission, err := h.commissionService.GetByID(c.Request.Context(), id)
	handler.MustSucceed(c, err, commission)
}

// Create 手工创建佣金记录
// @Summary 手工创建佣金记录
// @Tags 佣金
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body commission.CreateRequest true "请求参数"
// @Success 201 {object} models.Commission
// @Router /api/v1/commissions [post]
func (h *Handler) Create(c *gin.Context) {
	var req commissionsvc.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	commission, err := h.commissionService.Create(c.Request.Context(), &req)
	handler.MustSucceedCreated(c, err, commission)
}

// UpdateRequest 更新佣金请求
// 同时带 month 与 year 时按「会员 + 月份」批量更新支付状态，
// 此时路径中的 id 作为会员 ID 解释，响应为记录数组
type UpdateRequest struct {
	Month                *int       `json:"month"`
	Year                 *int       `json:"year"`
	SaleValue            *float64   `json:"sale_value"`
	CommissionPercentage *float64   `json:"commission_percentage"`
	CommissionValue      *float64   `json:"commission_value"`
	SaleDate             *time.Time `json:"sale_date"`
	PaymentDate          *time.Time `json:"payment_date"`
	IsPaid               *bool      `json:"is_paid"`
}

// Update 更新佣金记录（按载荷分派单条/批量）
// @Summary 更新佣金记录
// @Tags 佣金
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "佣金ID（批量时为会员ID）"
// @Param request body UpdateRequest true "请求参数"
// @Success 200 {object} models.Commission
// @Router /api/v1/commissions/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "佣金")
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	// 批量分支：载荷字段原样下发，月份只作筛选条件
	if req.Month != nil && req.Year != nil {
		commissions, err := h.commissionService.UpdateForPeriod(c.Request.Context(), id, *req.Month, *req.Year, &commissionsvc.UpdateRequest{
			SaleValue:            req.SaleValue,
			CommissionPercentage: req.CommissionPercentage,
			CommissionValue:      req.CommissionValue,
			SaleDate:             req.SaleDate,
			PaymentDate:          req.PaymentDate,
			IsPaid:               req.IsPaid,
		})
		handler.MustSucceed(c, err, commissions)
		return
	}

	commission, err := h.commissionService.UpdateByID(c.Request.Context(), id, &commissionsvc.UpdateRequest{
		SaleValue:            req.SaleValue,
		CommissionPercentage: req.CommissionPercentage,
		CommissionValue:      req.CommissionValue,
		SaleDate:             req.SaleDate,
		PaymentDate:          req.PaymentDate,
		IsPaid:               req.IsPaid,
	})
	handler.MustSucceed(c, err, commission)
}

// UpdateForMemberRequest 按会员批量更新支付状态请求
type UpdateForMemberRequest struct {
	IsPaid bool `json:"is_paid"`
}

// UpdateForMember 批量更新某会员的全部历史佣金
// @Summary 批量更新某会员的全部历史佣金
// @Tags 佣金
// @Accept json
// @Produce json
// @Security Bearer
// @Param memberId path int true "会员ID"
// @Param request body UpdateForMemberRequest true "请求参数"
// @Success 200 {array} models.Commission
// @Router /api/v1/commissions/member/{memberId} [put]
func (h *Handler) UpdateForMember(c *gin.Context) {
	memberID, ok := handler.ParseParamID(c, "memberId", "会员")
	if !ok {
		return
	}

	var req UpdateForMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	commissions, err := h.commissionService.MarkPaidForMember(c.Request.Context(), memberID, req.IsPaid)
	handler.MustSucceed(c, err, commissions)
}

// Delete 删除佣金记录
// @Summary 删除佣金记录
// @Tags 佣金
// @Security Bearer
// @Param id path int true "佣金ID"
// @Success 204
// @Router /api/v1/commissions/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "佣金")
	if !ok {
		return
	}

	err := h.commissionService.Delete(c.Request.Context(), id)
	handler.MustSucceedNoContent(c, err)
}
