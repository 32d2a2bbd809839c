// Package handler 提供 HTTP 请求处理器
// 本文件处理消息内容相关的 API 请求
package handler

import (
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// SendMessageHandler 发送消息
// POST /message/send
func SendMessageHandler(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Message.SendMessage(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// EditMessageHandler 编辑消息
// POST /message/edit
func EditMessageHandler(c *gin.Context) {
	var req request.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Message.EditMessage(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RevokeMessageHandler 撤回消息
// POST /message/revoke
func RevokeMessageHandler(c *gin.Context) {
	var req request.RevokeMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Message.RevokeMessage(req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetMessagesByIdsHandler 批量取消息内容
// POST /message/getByIds
func GetMessagesByIdsHandler(c *gin.Context) {
	var req request.GetMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Message.GetMessagesByIds(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetVersionHistoryHandler 查询消息版本历史
// GET /message/versionHistory?magic_message_id=xxx
func GetVersionHistoryHandler(c *gin.Context) {
	var req request.VersionHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Message.GetVersionHistory(req.MagicMessageId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
