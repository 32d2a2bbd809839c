// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"seqchat_server/internal/config"
)

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用，按模块分别注册各个路由组
func RegisterRoutes(r *gin.Engine) {
	// dev 模式才暴露联调用的 Token 签发
	if config.GetConfig().MainConfig.Mode != "release" {
		RegisterAuthRoutes(r)
	}
	RegisterMessageRoutes(r)   // 消息内容路由
	RegisterDeliveryRoutes(r)  // 序列投递路由
	RegisterTopicRoutes(r)     // 话题路由
	RegisterWebSocketRoutes(r) // WebSocket 路由
}
