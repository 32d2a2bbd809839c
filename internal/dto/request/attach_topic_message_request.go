package request

// AttachTopicMessageRequest 将已投递条目补挂到话题的请求
// 常规路径是发送时携带 topic_uuid 自动挂载，本接口用于补录
// 使用位置:
//   - internal/handler/topic_handler.go: AttachTopicMessageHandler
type AttachTopicMessageRequest struct {
	ConversationId string `json:"conversation_id" binding:"required"`
	TopicUuid      string `json:"topic_uuid" binding:"required"`
	ObjectType     string `json:"object_type" binding:"required"`
	ObjectId       string `json:"object_id" binding:"required"`
	SeqId          int64  `json:"seq_id" binding:"required"`
}
