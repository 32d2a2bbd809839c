package respond

// StatusChangeRespond 状态变更流响应
// 每个被引用消息只出现一次，以 seq_id 最大的条目为准
// 使用位置:
//   - internal/service/delivery/delivery_service.go: ResolveStatusChanges
type StatusChangeRespond struct {
	Entries []DeliveryViewRespond `json:"entries"`
}
