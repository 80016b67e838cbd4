// Package member 提供会员相关的 HTTP Handler
package member

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focomkt/sales-hub-backend/internal/common/handler"
	"github.com/focomkt/sales-hub-backend/internal/common/response"
	"github.com/focomkt/sales-hub-backend/internal/middleware"
	authsvc "github.com/focomkt/sales-hub-backend/internal/service/auth"
	membersvc "github.com/focomkt/sales-hub-backend/internal/service/member"
)

// Handler 会员处理器
type Handler struct {
	memberService *membersvc.MemberService
	squadService  *membersvc.SquadService
	authService   *authsvc.AuthService
	inviteService *authsvc.InviteService
}

// NewHandler 创建会员处理器
func NewHandler(
	memberSvc *membersvc.MemberService,
	squadSvc *membersvc.SquadService,
	authSvc *authsvc.AuthService,
	inviteSvc *authsvc.InviteService,
) *Handler {
	return &Handler{
		memberService: memberSvc,
		squadService:  squadSvc,
		authService:   authSvc,
		inviteService: inviteSvc,
	}
}

// RegisterRoutes 注册会员路由
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	members := g.Group("/members")
	{
		members.GET("/top", h.GetTopMembers)
		members.GET("/top-squads", h.GetTopSquads)
		members.GET("/status/:status", h.GetByStatus)
		members.PUT("/:id/approve", h.Approve)
		members.PUT("/:id/reject", h.Reject)
		members.PUT("/:id/tutorial-seen", h.MarkTutorialSeen)
		members.GET("/:id/squad", h.GetSquad)
		members.GET("/:id/squad-metrics", h.GetSquadMetrics)
		members.GET("/:id/invite", h.GetInviteInfo)
		members.GET("/:id", h.Get)
		members.GET("", h.List)
		members.PUT("/:id", h.Update)
		members.DELETE("/:id", h.Delete)
	}
}

// GetTopMembers 按累计佣金排序的会员排行榜
// @Summary 会员排行榜
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param limit query int false "条数" default(10)
// @Success 200 {array} models.Member
// @Router /api/v1/members/top [get]
func (h *Handler) GetTopMembers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	members, err := h.squadService.GetTopMembers(c.Request.Context(), limit)
	handler.MustSucceed(c, err, members)
}

// GetTopSquads 按团队累计佣金排序的团队排行榜
// @Summary 团队排行榜
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param limit query int false "条数" default(10)
// @Success 200 {array} member.TopSquad
// @Router /api/v1/members/top-squads [get]
func (h *Handler) GetTopSquads(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	squads, err := h.squadService.GetTopSquads(c.Request.Context(), limit)
	handler.MustSucceed(c, err, squads)
}

// GetByStatus 按审核状态获取会员列表
// @Summary 按审核状态获取会员列表
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param status path string true "审核状态" Enums(pending, approved, rejected)
// @Success 200 {array} models.Member
// @Router /api/v1/members/status/{status} [get]
func (h *Handler) GetByStatus(c *gin.Context) {
	members, err := h.memberService.GetByStatus(c.Request.Context(), c.Param("status"))
	handler.MustSucceed(c, err, members)
}

// Approve 审核通过（管理员）
// @Summary 审核通过会员
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} models.Member
// @Failure 403 {object} response.ErrorBody
// @Router /api/v1/members/{id}/approve [put]
func (h *Handler) Approve(c *gin.Context) {
	if !handler.RequireAdmin(c) {
		return
	}
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	member, err := h.memberService.Approve(c.Request.Context(), id)
	handler.MustSucceed(c, err, member)
}

// Reject 审核拒绝（管理员）
// @Summary 审核拒绝会员
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} models.Member
// @Failure 403 {object} response.ErrorBody
// @Router /api/v1/members/{id}/reject [put]
func (h *Handler) Reject(c *gin.Context) {
	if !handler.RequireAdmin(c) {
		return
	}
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	member, err := h.memberService.Reject(c.Request.Context(), id)
	handler.MustSucceed(c, err, member)
}

// MarkTutorialSeen 标记新手引导已读
// @Summary 标记新手引导已读
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} models.Member
// @Router /api/v1/members/{id}/tutorial-seen [put]
func (h *Handler) MarkTutorialSeen(c *gin.Context) {
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	member, err := h.memberService.MarkTutorialSeen(c.Request.Context(), id)
	handler.MustSucceed(c, err, member)
}

// GetSquad 获取团队
// @Summary 获取某会员的团队
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} member.Squad
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/members/{id}/squad [get]
func (h *Handler) GetSquad(c *gin.Context) {
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	squad, err := h.squadService.GetSquad(c.Request.Context(), id)
	handler.MustSucceed(c, err, squad)
}

// GetSquadMetrics 获取团队汇总指标
// @Summary 获取某会员的团队汇总指标
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} member.SquadMetrics
// @Router /api/v1/members/{id}/squad-metrics [get]
func (h *Handler) GetSquadMetrics(c *gin.Context) {
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	squadMetrics, err := h.squadService.GetSquadMetrics(c.Request.Context(), id)
	handler.MustSucceed(c, err, squadMetrics)
}

// GetInviteInfo 获取邀请链接与二维码
// @Summary 获取某会员的邀请链接与二维码
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} auth.InviteInfo
// @Router /api/v1/members/{id}/invite [get]
func (h *Handler) GetInviteInfo(c *gin.Context) {
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	// 邀请链接只对存在的会员生成
	if _, err := h.memberService.GetByID(c.Request.Context(), id); handler.HandleError(c, err) {
		return
	}

	info, err := h.inviteService.GetInviteInfo(id)
	handler.MustSucceed(c, err, info)
}

// Get 获取会员详情
// @Summary 获取会员详情
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 200 {object} models.Member
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/members/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	member, err := h.memberService.GetDetail(c.Request.Context(), id)
	handler.MustSucceed(c, err, member)
}

// List 获取会员列表
// @Summary 获取会员列表
// @Tags 会员
// @Produce json
// @Security Bearer
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {array} models.Member
// @Router /api/v1/members [get]
func (h *Handler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	members, total, err := h.memberService.List(c.Request.Context(), p.GetOffset(), p.GetLimit())
	if handler.HandleError(c, err) {
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	response.Success(c, members)
}

// Update 更新会员资料
// 聚合计数与审核状态只有管理员可改
// @Summary 更新会员资料
// @Tags 会员
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "会员ID"
// @Param request body member.UpdateRequest true "请求参数"
// @Success 200 {object} models.Member
// @Failure 404 {object} response.ErrorBody
// @Router /api/v1/members/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	var req membersvc.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	member, err := h.memberService.Update(c.Request.Context(), id, &req, middleware.IsAdmin(c))
	handler.MustSucceed(c, err, member)
}

// Delete 删除会员（管理员）
// 连带清理账号档案与身份服务用户
// @Summary 删除会员
// @Tags 会员
// @Security Bearer
// @Param id path int true "会员ID"
// @Success 204
// @Failure 403 {object} response.ErrorBody
// @Router /api/v1/members/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if !handler.RequireAdmin(c) {
		return
	}
	id, ok := handler.ParseID(c, "会员")
	if !ok {
		return
	}

	err := h.authService.DeleteMember(c.Request.Context(), id)
	handler.MustSucceedNoContent(c, err)
}
