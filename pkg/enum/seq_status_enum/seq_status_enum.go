// Package seq_status_enum 定义序列日志条目的状态
// status 是条目写入后唯一允许原地更新的字段之一（另一个是 extra）
package seq_status_enum

const (
	Normal    int8 = 0 // 正常（未读）
	Delivered int8 = 1 // 已送达
	Read      int8 = 2 // 已读
	Revoked   int8 = 3 // 已撤回
)

// IsValid 判断是否为已定义的状态值
func IsValid(status int8) bool {
	return status >= Normal && status <= Revoked
}
