package request

// PullRequest 信箱游标拉取请求
// 升序补拉（pull after）与降序回看（pull recent）共用本结构
// 使用位置:
//   - internal/handler/delivery_handler.go: PullAfterHandler / PullRecentHandler
type PullRequest struct {
	ObjectType string `json:"object_type" form:"object_type" binding:"required"`
	ObjectId   string `json:"object_id" form:"object_id" binding:"required"`
	// Cursor 上次拉取到的 seq_id，0 表示升序从头、降序从最新开始
	Cursor int64 `json:"cursor" form:"cursor"`
	Limit  int   `json:"limit" form:"limit"`
}
