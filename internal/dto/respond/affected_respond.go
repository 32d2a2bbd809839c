package respond

// AffectedRespond 批量原地更新/清理的受影响行数响应
// 使用位置:
//   - internal/service/delivery/delivery_service.go: BatchUpdateStatus / DeleteEntries
type AffectedRespond struct {
	Affected int64 `json:"affected"`
}
