package request

// GroupedLatestRequest 各会话最新消息拉取请求（会话列表首屏）
// 使用位置:
//   - internal/handler/delivery_handler.go: PullGroupedLatestHandler
type GroupedLatestRequest struct {
	ObjectType string `json:"object_type" binding:"required"`
	ObjectId   string `json:"object_id" binding:"required"`
	// ConversationIds 为空时覆盖信箱内全部会话
	ConversationIds []string `json:"conversation_ids"`
	// LimitPerConversation 每个会话返回的条数上限
	LimitPerConversation int `json:"limit_per_conversation"`
}
