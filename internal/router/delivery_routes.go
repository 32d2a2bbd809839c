// Package router 提供 HTTP 路由注册
// 本文件定义序列投递相关的路由
package router

import (
	"seqchat_server/internal/handler"
	"seqchat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterDeliveryRoutes 注册序列投递相关路由（需要认证）
func RegisterDeliveryRoutes(r *gin.Engine) {
	deliveryGroup := r.Group("/delivery")
	deliveryGroup.Use(middleware.JWTAuth())
	{
		deliveryGroup.GET("/pullAfter", handler.PullAfterHandler)                          // 升序补拉
		deliveryGroup.GET("/pullRecent", handler.PullRecentHandler)                        // 降序回看
		deliveryGroup.GET("/pullByAppMessageId", handler.PullByAppMessageIdHandler)        // 按幂等键续拉
		deliveryGroup.POST("/pullConversationWindow", handler.PullConversationWindowHandler) // 会话回看窗口
		deliveryGroup.POST("/pullGroupedLatest", handler.PullGroupedLatestHandler)         // 各会话最新
		deliveryGroup.POST("/resolveStatusChanges", handler.ResolveStatusChangesHandler)   // 状态变更流
		deliveryGroup.POST("/batchUpdateStatus", handler.BatchUpdateStatusHandler)         // 批量状态更新
		deliveryGroup.POST("/updateExtra", handler.UpdateExtraHandler)                     // 旁路数据更新
		deliveryGroup.POST("/deleteEntries", handler.DeleteEntriesHandler)                 // 管理性清理
	}
}
