// Package handler 提供 HTTP 请求处理器
// 本文件处理话题相关的 API 请求
package handler

import (
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/service"
	"seqchat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// CreateTopicHandler 创建话题
// POST /topic/create
func CreateTopicHandler(c *gin.Context) {
	var req request.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Topic.CreateTopic(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateTopicHandler 更新话题
// POST /topic/update
func UpdateTopicHandler(c *gin.Context) {
	var req request.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Topic.UpdateTopic(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteTopicHandler 删除话题
// POST /topic/delete
func DeleteTopicHandler(c *gin.Context) {
	var req request.DeleteTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Topic.DeleteTopic(req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetTopicHandler 查询话题
// GET /topic/get?conversation_id=xxx&topic_uuid=xxx
func GetTopicHandler(c *gin.Context) {
	conversationId := c.Query("conversation_id")
	topicUuid := c.Query("topic_uuid")
	if conversationId == "" || topicUuid == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "conversation_id 和 topic_uuid 不能为空"))
		return
	}
	data, err := service.Svc.Topic.GetTopic(conversationId, topicUuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetTopicByUuidHandler 仅凭话题标识查询话题
// GET /topic/getByUuid?topic_uuid=xxx
func GetTopicByUuidHandler(c *gin.Context) {
	topicUuid := c.Query("topic_uuid")
	if topicUuid == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "topic_uuid 不能为空"))
		return
	}
	data, err := service.Svc.Topic.GetTopicByUuid(topicUuid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AttachTopicMessageHandler 将已投递条目补挂到话题
// POST /topic/attachMessage
func AttachTopicMessageHandler(c *gin.Context) {
	var req request.AttachTopicMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := service.Svc.Topic.AttachMessage(req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListTopicMessagesHandler 话题内消息游标拉取
// POST /topic/listMessages
func ListTopicMessagesHandler(c *gin.Context) {
	var req request.TopicMessageListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := service.Svc.Topic.ListMessages(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
