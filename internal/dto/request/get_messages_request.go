package request

// GetMessagesRequest 批量取消息内容请求
// 返回内容为当前生效版本，被撤回消息以墓碑形式返回
// 使用位置:
//   - internal/handler/message_handler.go: GetMessagesByIdsHandler
type GetMessagesRequest struct {
	MessageIds []int64 `json:"message_ids" binding:"required,min=1"`
	// Type 非 nil 时按消息类型过滤
	Type *int8 `json:"type"`
}
