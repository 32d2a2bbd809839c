package request

// UpdateExtraRequest 条目旁路数据更新请求
// 使用位置:
//   - internal/handler/delivery_handler.go: UpdateExtraHandler
type UpdateExtraRequest struct {
	ObjectType string `json:"object_type" binding:"required"`
	ObjectId   string `json:"object_id" binding:"required"`
	SeqId      int64  `json:"seq_id" binding:"required"`
	// Extra 结构化 JSON 文本，整体覆盖旧值
	Extra string `json:"extra" binding:"required"`
}
