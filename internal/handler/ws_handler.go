// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"seqchat_server/internal/gateway/websocket"
	"seqchat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// WsConnectHandler WebSocket 接入（升级 HTTP 连接）
// GET /ws/connect
// 信箱身份取自 JWT 中间件写入的上下文，不信任查询参数
func WsConnectHandler(c *gin.Context) {
	objectType := c.GetString("object_type")
	objectId := c.GetString("object_id")
	if objectType == "" || objectId == "" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "信箱身份缺失"))
		return
	}
	websocket.NewClientInit(c, objectType, objectId)
}

// WsLogoutHandler WebSocket 登出
// POST /ws/logout
func WsLogoutHandler(c *gin.Context) {
	objectType := c.GetString("object_type")
	objectId := c.GetString("object_id")
	if objectType == "" || objectId == "" {
		HandleError(c, errorx.New(errorx.CodeUnauthorized, "信箱身份缺失"))
		return
	}
	websocket.ClientLogout(objectType, objectId)
	HandleSuccess(c, nil)
}
