package request

// SendMessageRequest 发送消息请求
// 使用位置:
//   - internal/handler/message_handler.go: SendMessageHandler
//   - internal/service/message/message_service.go: SendMessage
type SendMessageRequest struct {
	ConversationId string `json:"conversation_id" binding:"required"`
	SenderType     string `json:"sender_type" binding:"required"`
	SenderId       string `json:"sender_id" binding:"required"`
	// Type 消息类型，参见 pkg/enum/message_type_enum
	Type    int8   `json:"type"`
	Content string `json:"content" binding:"required"`
	// AppMessageId 客户端幂等键，重试时携带同一值不会重复建消息
	AppMessageId string `json:"app_message_id"`
	// TopicUuid 非空时消息归属该话题，归属建条目时固定
	TopicUuid   string       `json:"topic_uuid"`
	ReceiveList []MailboxRef `json:"receive_list" binding:"required,min=1,dive"`
	Extra       string       `json:"extra"`
}
