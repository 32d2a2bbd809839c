package request

// RevokeMessageRequest 消息撤回请求
// 内容打墓碑（软删除），并向每个接收信箱追加撤回控制条目
// 使用位置:
//   - internal/handler/message_handler.go: RevokeMessageHandler
type RevokeMessageRequest struct {
	MagicMessageId int64 `json:"magic_message_id" binding:"required"`
}
