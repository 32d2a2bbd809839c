package request

// UpdateStatusRequest 批量状态更新请求（已读/已送达记账）
// 使用位置:
//   - internal/handler/delivery_handler.go: BatchUpdateStatusHandler
type UpdateStatusRequest struct {
	ObjectType string  `json:"object_type" binding:"required"`
	ObjectId   string  `json:"object_id" binding:"required"`
	SeqIds     []int64 `json:"seq_ids" binding:"required,min=1"`
	// Status 目标状态，参见 pkg/enum/seq_status_enum
	Status int8 `json:"status"`
}
