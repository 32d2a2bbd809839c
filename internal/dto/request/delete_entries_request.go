package request

// DeleteEntriesRequest 序列条目管理性清理请求
// 使用位置:
//   - internal/handler/delivery_handler.go: DeleteEntriesHandler
type DeleteEntriesRequest struct {
	ObjectType string `json:"object_type" binding:"required"`
	ObjectId   string `json:"object_id" binding:"required"`
	// SeqIds 待清理序号，重复值与非正值在存储层过滤
	SeqIds []int64 `json:"seq_ids" binding:"required"`
}
