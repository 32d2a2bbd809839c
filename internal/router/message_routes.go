// Package router 提供 HTTP 路由注册
// 本文件定义消息内容相关的路由
package router

import (
	"seqchat_server/internal/handler"
	"seqchat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息内容相关路由（需要认证）
func RegisterMessageRoutes(r *gin.Engine) {
	messageGroup := r.Group("/message")
	messageGroup.Use(middleware.JWTAuth())
	{
		messageGroup.POST("/send", handler.SendMessageHandler)                  // 发送消息
		messageGroup.POST("/edit", handler.EditMessageHandler)                  // 编辑消息
		messageGroup.POST("/revoke", handler.RevokeMessageHandler)              // 撤回消息
		messageGroup.POST("/getByIds", handler.GetMessagesByIdsHandler)         // 批量取消息内容
		messageGroup.GET("/versionHistory", handler.GetVersionHistoryHandler)   // 消息版本历史
	}
}
