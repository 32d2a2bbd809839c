package respond

// DeliveryViewRespond 投递视图：序列条目连同其消息内容
// 所有键始终存在；内容缺失（已清理或尚未落盘）时 Message 为 null，
// 条目本身绝不因内容缺失而被丢弃
// 使用位置:
//   - internal/service/delivery/delivery_service.go: buildViews
//   - internal/service/topic/topic_service.go: ListMessages
type DeliveryViewRespond struct {
	SeqId          int64  `json:"seq_id"`
	ObjectType     string `json:"object_type"`
	ObjectId       string `json:"object_id"`
	ConversationId string `json:"conversation_id"`
	TopicUuid      string `json:"topic_uuid"`
	// SeqType 条目类型，参见 pkg/enum/seq_type_enum
	SeqType        int8   `json:"seq_type"`
	ReferMessageId int64  `json:"refer_message_id"`
	MagicMessageId int64  `json:"magic_message_id"`
	AppMessageId   string `json:"app_message_id"`
	Status         int8   `json:"status"`
	Extra          string `json:"extra"`
	CreatedAt      string `json:"created_at"`

	// Message chat 条目的消息内容，控制条目或内容缺失时为 null
	Message *MessageRespond `json:"message"`
}
