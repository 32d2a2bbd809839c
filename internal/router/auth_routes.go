// Package router 提供 HTTP 路由注册
// 本文件定义本地联调用的认证路由
package router

import (
	"seqchat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证相关路由（仅 dev 模式）
func RegisterAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		// POST /auth/devToken - 签发联调用 Access Token
		authGroup.POST("/devToken", handler.DevTokenHandler)
	}
}
