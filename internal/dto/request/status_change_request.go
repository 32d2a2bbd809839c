package request

// StatusChangeRequest 状态变更流解析请求
// 对每个被引用消息，控制条目与原始条目按 seq_id 最大者为准
// 使用位置:
//   - internal/handler/delivery_handler.go: ResolveStatusChangesHandler
type StatusChangeRequest struct {
	ObjectType      string  `json:"object_type" binding:"required"`
	ObjectId        string  `json:"object_id" binding:"required"`
	ReferMessageIds []int64 `json:"refer_message_ids" binding:"required,min=1"`
}
