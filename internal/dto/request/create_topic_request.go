package request

// CreateTopicRequest 创建话题请求
// 使用位置:
//   - internal/handler/topic_handler.go: CreateTopicHandler
type CreateTopicRequest struct {
	ConversationId string `json:"conversation_id" binding:"required"`
	// Name 话题名称，长度上限 50 字符
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
