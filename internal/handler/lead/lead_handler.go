// Package lead 提供销售线索相关的 HTTP Handler
package lead

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focomkt/sales-hub-backend/internal/common/handler"
	"github.com/focomkt/sales-hub-backend/internal/common/response"
	"github.com/focomkt/sales-hub-backend/internal/models"
	leadsvc "github.com/focomkt/sales-hub-backend/internal/service/lead"
)

// Handler 线索处理器
type Handler struct {
	leadService *leadsvc.LeadService
}

// NewHandler 创建线索处理器
func NewHandler(leadSvc *leadsvc.LeadService) *Handler {
	return &Handler{leadService: leadSvc}
}

// RegisterRoutes 注册线索路由
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	leads := g.Group("/leads")
	{
		leads.GET("", h.List)
		leads.GET("/:id", h.Get)
		leads.POST("", h.Create)
		leads.PUT("/:id", h.Update)
		leads.DELETE("/:id", h.Delete)
	}
}

// List 获取线索列表
// @Summary 获取线索列表
// @Tags 线索
// @Produce json
// @Security Bearer
// @Param member_id query int false "会员ID"
// @Param status query string false "线索状态"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {array} models.Lead
// @Router /api/v1/leads [get]
func (h *Handler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := map[string]interface{}{}
	if memberID, err := strconv.ParseInt(c.Query("member_id"), 10, 64); err == nil {
		filters["member_id"] = memberID
	}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}

	leads, total, err := h.leadService.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	if handler.HandleError(c, err) {
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	response.Success(c, leads)
}

// Get 获取线索详情
// @Summary 获取线索详情
// @Tags 线索
// @Produce json
// @Security Bearer
// @Param id path int true "线索ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/leads/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "线索")
	if !ok {
		return
	}

	lead, err := h.leadService.GetByID(c.Request.Context(), id)
	handler.MustSucceed(c, err, lead)
}

// Create 创建线索
// @Summary 创建线索
// @Tags 线索
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body lead.CreateRequest true "请求参数"
// @Success 201 {object} models.Lead
// @Router /api/v1/leads [post]
func (h *Handler) Create(c *gin.Context) {
	var req leadsvc.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	lead, err := h.leadService.Create(c.Request.Context(), &req)
	handler.MustSucceedCreated(c, err, lead)
}

// UpdateResponse 线索更新响应
// 触发结单级联时附带级联的分步结果
type UpdateResponse struct {
	*models.Lead
	Closure *leadsvc.ClosureResult `json:"closure,omitempty"`
}

// Update 更新线索
// 状态首次变为 closed 时触发佣金级联，级联结果随响应返回
// @Summary 更新线索
// @Tags 线索
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "线索ID"
// @Param request body lead.UpdateRequest true "请求参数"
// @Success 200 {object} UpdateResponse
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/leads/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "线索")
	if !ok {
		return
	}

	var req leadsvc.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	lead, closure, err := h.leadService.Update(c.Request.Context(), id, &req)
	if handler.HandleError(c, err) {
		return
	}
	response.Success(c, &UpdateResponse{Lead: lead, Closure: closure})
}

// Delete 删除线索
// @Summary 删除线索
// @Tags 线索
// @Security Bearer
// @Param id path int true "线索ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/leads/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "线索")
	if !ok {
		return
	}

	err := h.leadService.Delete(c.Request.Context(), id)
	handler.MustSucceedNoContent(c, err)
}
