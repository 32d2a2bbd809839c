// Package seq_type_enum 定义序列日志条目类型
// chat 条目引用一条消息内容；其余均为控制条目，
// 通过 refer_message_id 指向其描述的原始消息，不改写历史
package seq_type_enum

const (
	Chat           int8 = 0 // 聊天条目，magic_message_id 关联消息内容
	Delivered      int8 = 1 // 送达回执控制条目
	Read           int8 = 2 // 已读控制条目
	Revoked        int8 = 3 // 撤回控制条目
	Edited         int8 = 4 // 编辑通知控制条目，每个信箱只通知一次
	AppInstruction int8 = 5 // 应用层指令控制条目
)

// IsControl 判断是否为控制类型条目
func IsControl(seqType int8) bool {
	return seqType != Chat
}
