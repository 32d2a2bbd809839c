// Package handler 提供 HTTP 请求处理器
// 本文件处理序列投递相关的 API 请求：各类游标拉取与条目记账
package handler

import (
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// PullAfterHandler 升序补拉
// GET /delivery/pullAfter?object_type=xxx&object_id=xxx&cursor=0&limit=20
func PullAfterHandler(c *gin.Context) {
	var req request.PullRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.PullAfter(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// PullRecentHandler 降序回看
// GET /delivery/pullRecent?object_type=xxx&object_id=xxx&cursor=0&limit=20
func PullRecentHandler(c *gin.Context) {
	var req request.PullRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.PullRecent(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// PullByAppMessageIdHandler 按客户端幂等键续拉
// GET /delivery/pullByAppMessageId
func PullByAppMessageIdHandler(c *gin.Context) {
	var req request.PullByAppMessageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.PullByAppMessageId(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// PullConversationWindowHandler 会话回看窗口拉取
// POST /delivery/pullConversationWindow
func PullConversationWindowHandler(c *gin.Context) {
	var req request.ConversationWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.PullConversationWindow(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// PullGroupedLatestHandler 各会话最新消息拉取
// POST /delivery/pullGroupedLatest
func PullGroupedLatestHandler(c *gin.Context) {
	var req request.GroupedLatestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.PullGroupedLatest(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ResolveStatusChangesHandler 解析状态变更流
// POST /delivery/resolveStatusChanges
func ResolveStatusChangesHandler(c *gin.Context) {
	var req request.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.ResolveStatusChanges(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// BatchUpdateStatusHandler 批量状态更新
// POST /delivery/batchUpdateStatus
func BatchUpdateStatusHandler(c *gin.Context) {
	var req request.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.BatchUpdateStatus(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateExtraHandler 条目旁路数据更新
// POST /delivery/updateExtra
func UpdateExtraHandler(c *gin.Context) {
	var req request.UpdateExtraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Delivery.UpdateExtra(req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteEntriesHandler 管理性清理条目
// POST /delivery/deleteEntries
func DeleteEntriesHandler(c *gin.Context) {
	var req request.DeleteEntriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Delivery.DeleteEntries(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
