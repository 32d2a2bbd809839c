package request

// TopicMessageListRequest 话题内消息游标拉取请求
// 使用位置:
//   - internal/handler/topic_handler.go: ListTopicMessagesHandler
type TopicMessageListRequest struct {
	ConversationId string `json:"conversation_id" binding:"required"`
	TopicUuid      string `json:"topic_uuid" binding:"required"`
	ObjectType     string `json:"object_type" binding:"required"`
	ObjectId       string `json:"object_id" binding:"required"`
	Cursor         int64  `json:"cursor"`
	Desc           bool   `json:"desc"`
	Limit          int    `json:"limit"`
	// StartMs / EndMs 毫秒时间戳收敛条件，0 表示不限制
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}
