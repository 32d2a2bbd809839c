package respond

// ReceiverSeqRespond 单个接收信箱分得的序号
type ReceiverSeqRespond struct {
	ObjectType string `json:"object_type"`
	ObjectId   string `json:"object_id"`
	SeqId      int64  `json:"seq_id"`
}

// SendMessageRespond 发送消息响应
// Duplicate 为 true 表示命中幂等键，本次未新建消息
// 使用位置:
//   - internal/service/message/message_service.go: SendMessage
type SendMessageRespond struct {
	MagicMessageId int64                `json:"magic_message_id"`
	AppMessageId   string               `json:"app_message_id"`
	Duplicate      bool                 `json:"duplicate"`
	Receivers      []ReceiverSeqRespond `json:"receivers"`
}
