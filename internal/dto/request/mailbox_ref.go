package request

// MailboxRef 信箱引用，标识一个接收方
// 使用位置:
//   - send_message_request.go: SendMessageRequest.ReceiveList
//   - internal/service/delivery: 扇出时逐信箱分配序号
type MailboxRef struct {
	ObjectType string `json:"object_type" binding:"required"`
	ObjectId   string `json:"object_id" binding:"required"`
}
