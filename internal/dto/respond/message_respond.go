package respond

// MessageRespond 消息内容响应
// Content 始终为当前生效版本；被撤回消息 Revoked 为 true 且 Content 为空
// 使用位置:
//   - internal/service/message/message_service.go: GetMessagesByIds
//   - delivery_view_respond.go: DeliveryViewRespond.Message
type MessageRespond struct {
	MagicMessageId   int64  `json:"magic_message_id"`
	ConversationId   string `json:"conversation_id"`
	SenderType       string `json:"sender_type"`
	SenderId         string `json:"sender_id"`
	Type             int8   `json:"type"`
	Content          string `json:"content"`
	CurrentVersionId int64  `json:"current_version_id"`
	AppMessageId     string `json:"app_message_id"`
	Revoked          bool   `json:"revoked"`
	CreatedAt        string `json:"created_at"`
}
