package request

// UpdateTopicRequest 更新话题请求
// 使用位置:
//   - internal/handler/topic_handler.go: UpdateTopicHandler
type UpdateTopicRequest struct {
	ConversationId string `json:"conversation_id" binding:"required"`
	TopicUuid      string `json:"topic_uuid" binding:"required"`
	Name           string `json:"name"`
	Description    string `json:"description"`
}
