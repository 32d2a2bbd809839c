// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 网关相关的路由
package router

import (
	"seqchat_server/internal/handler"
	"seqchat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 网关路由（需要认证）
func RegisterWebSocketRoutes(r *gin.Engine) {
	wsGroup := r.Group("/ws")
	wsGroup.Use(middleware.JWTAuth())
	{
		wsGroup.GET("/connect", handler.WsConnectHandler) // 建立推送连接
		wsGroup.POST("/logout", handler.WsLogoutHandler)  // 断开推送连接
	}
}
