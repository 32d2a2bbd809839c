package request

// ConversationWindowRequest 会话回看窗口拉取请求
// 使用位置:
//   - internal/handler/delivery_handler.go: PullConversationWindowHandler
type ConversationWindowRequest struct {
	ObjectType      string   `json:"object_type" binding:"required"`
	ObjectId        string   `json:"object_id" binding:"required"`
	ConversationIds []string `json:"conversation_ids" binding:"required,min=1"`
	Cursor          int64    `json:"cursor"`
	// StartMs / EndMs 毫秒时间戳收敛条件，0 表示不限制
	// 排序始终由 seq_id 驱动，时间只做过滤
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
	Desc    bool  `json:"desc"`
	Limit   int   `json:"limit"`
}
