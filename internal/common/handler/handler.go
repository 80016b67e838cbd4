// Package handler 提供 API Handler 的通用辅助函数
// 用于减少 Handler 层的代码重复，统一错误处理、认证检查、参数解析等操作
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/response"
	"github.com/focomkt/sales-hub-backend/internal/common/utils"
	"github.com/focomkt/sales-hub-backend/internal/middleware"
)

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false（表示无错误需要处理）
// 如果 err 不为 nil，发送错误响应并返回 true（表示已处理错误，调用方应该 return）
//
// 使用示例:
//
//	result, err := service.DoSomething()
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(c, appErr.Status, appErr.Code, appErr.Message)
		return true
	}
	response.InternalError(c, err.Error())
	return true
}

// HandleErrorWithMessage 处理错误，对非 AppError 使用自定义消息
// 适用于需要隐藏内部错误详情的场景
func HandleErrorWithMessage(c *gin.Context, err error, message string) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(c, appErr.Status, appErr.Code, appErr.Message)
		return true
	}
	response.InternalError(c, message)
	return true
}

// MustSucceed 便捷封装：如果有错误则返回错误响应，否则返回成功响应
// 适用于简单的「调用服务 -> 返回结果」场景
//
// 使用示例:
//
//	result, err := service.GetData()
//	handler.MustSucceed(c, err, result)
//	return  // 注意：调用 MustSucceed 后必须 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedCreated 便捷封装：创建成功时返回 201
func MustSucceedCreated(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Created(c, data)
}

// MustSucceedNoContent 便捷封装：删除成功时返回 204
func MustSucceedNoContent(c *gin.Context, err error) {
	if HandleError(c, err) {
		return
	}
	response.NoContent(c)
}

// RequireMemberID 获取当前会员ID，如果未登录则返回401响应
// 返回 (memberID, true) 表示已登录
// 返回 (0, false) 表示未登录（已发送响应，调用方应该 return）
func RequireMemberID(c *gin.Context) (int64, bool) {
	memberID := middleware.GetMemberID(c)
	if memberID == 0 {
		response.Unauthorized(c, "请先登录")
		return 0, false
	}
	return memberID, true
}

// RequireAuthID 获取当前登录账号的身份标识，如果未登录则返回401响应
func RequireAuthID(c *gin.Context) (string, bool) {
	authID := middleware.GetAuthID(c)
	if authID == "" {
		response.Unauthorized(c, "请先登录")
		return "", false
	}
	return authID, true
}

// RequireAdmin 检查当前登录账号是否为管理员，否则返回403响应
func RequireAdmin(c *gin.Context) bool {
	if middleware.GetRole(c) != "admin" {
		response.Forbidden(c, "权限不足")
		return false
	}
	return true
}

// ParseID 解析路径参数 "id" 为 int64
// 返回 (id, true) 表示解析成功
// 返回 (0, false) 表示解析失败（已发送400响应，调用方应该 return）
//
// 使用示例:
//
//	id, ok := handler.ParseID(c, "线索")
//	if !ok {
//	    return
//	}
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为 int64
// paramName: 路径参数名称（如 "id", "memberId"）
// resourceName: 资源名称，用于错误消息（如 "会员", "线索"）
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, pageSize=20, 最大 pageSize=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p.Normalize()
	return p
}
