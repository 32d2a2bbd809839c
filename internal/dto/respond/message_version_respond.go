package respond

// MessageVersionRespond 消息版本响应
// 使用位置:
//   - internal/service/message/message_service.go: GetVersionHistory
type MessageVersionRespond struct {
	VersionId      int64  `json:"version_id"`
	MagicMessageId int64  `json:"magic_message_id"`
	Content        string `json:"content"`
	// Current 是否为当前生效版本
	Current   bool   `json:"current"`
	CreatedAt string `json:"created_at"`
}
