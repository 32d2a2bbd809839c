package request

// EditMessageRequest 消息编辑请求
// 原内容不被修改：追加新版本并切换当前版本指针，
// 同时向每个接收信箱追加一条编辑控制条目
// 使用位置:
//   - internal/handler/message_handler.go: EditMessageHandler
type EditMessageRequest struct {
	MagicMessageId int64  `json:"magic_message_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}
