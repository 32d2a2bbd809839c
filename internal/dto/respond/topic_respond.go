package respond

// TopicRespond 话题响应
// 使用位置:
//   - internal/service/topic/topic_service.go: CreateTopic / GetTopic
type TopicRespond struct {
	TopicUuid      string `json:"topic_uuid"`
	ConversationId string `json:"conversation_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
