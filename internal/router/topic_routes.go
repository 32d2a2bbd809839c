// Package router 提供 HTTP 路由注册
// 本文件定义话题相关的路由
package router

import (
	"seqchat_server/internal/handler"
	"seqchat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterTopicRoutes 注册话题相关路由（需要认证）
func RegisterTopicRoutes(r *gin.Engine) {
	topicGroup := r.Group("/topic")
	topicGroup.Use(middleware.JWTAuth())
	{
		topicGroup.POST("/create", handler.CreateTopicHandler)            // 创建话题
		topicGroup.POST("/update", handler.UpdateTopicHandler)            // 更新话题
		topicGroup.POST("/delete", handler.DeleteTopicHandler)            // 删除话题
		topicGroup.GET("/get", handler.GetTopicHandler)                   // 查询话题
		topicGroup.GET("/getByUuid", handler.GetTopicByUuidHandler)       // 仅凭话题标识查询
		topicGroup.POST("/attachMessage", handler.AttachTopicMessageHandler) // 追加消息到话题
		topicGroup.POST("/listMessages", handler.ListTopicMessagesHandler)   // 话题消息列表
	}
}
