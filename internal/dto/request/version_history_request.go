package request

// VersionHistoryRequest 消息版本历史查询请求
// 使用位置:
//   - internal/handler/message_handler.go: GetVersionHistoryHandler
type VersionHistoryRequest struct {
	MagicMessageId int64 `json:"magic_message_id" form:"magic_message_id" binding:"required"`
}
