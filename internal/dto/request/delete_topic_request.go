package request

// DeleteTopicRequest 删除话题请求
// 话题行硬删除；已有消息关联不级联清理
// 使用位置:
//   - internal/handler/topic_handler.go: DeleteTopicHandler
type DeleteTopicRequest struct {
	ConversationId string `json:"conversation_id" binding:"required"`
	TopicUuid      string `json:"topic_uuid" binding:"required"`
}
