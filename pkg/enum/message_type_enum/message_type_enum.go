// Package message_type_enum 定义消息内容类型
package message_type_enum

const (
	Text  int8 = 0 // 文本消息
	Voice int8 = 1 // 语音消息
	File  int8 = 2 // 文件消息
	Call  int8 = 3 // 音视频通话信令
)

// IsValid 判断是否为已定义的消息类型
func IsValid(msgType int8) bool {
	return msgType >= Text && msgType <= Call
}
