package respond

// PullRespond 游标拉取响应
// NextCursor 为本页最后一条的 seq_id，客户端下次拉取原样带回
// 使用位置:
//   - internal/service/delivery/delivery_service.go: PullAfter / PullRecent 等
type PullRespond struct {
	Entries    []DeliveryViewRespond `json:"entries"`
	NextCursor int64                 `json:"next_cursor"`
	HasMore    bool                  `json:"has_more"`
}
