// Package model 定义数据库实体模型
// 本文件定义消息内容模型：内容不可变，编辑通过追加版本实现
package model

import (
	"gorm.io/gorm"
)

// Message 消息内容模型
// 对应数据库 message 表
// 内容与投递顺序分离存储：一条 Message 可被多条 SeqEntry 引用
// （每个接收信箱一条，外加编辑记账条目）
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识（即 magic_message_id）
	// 使用雪花算法生成的 int64 类型 ID
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ConversationId 会话标识
	// 由外部会话服务分配，本服务不校验其存在性
	ConversationId string `gorm:"column:conversation_id;index;type:char(36);not null;comment:会话标识"`

	// SenderType / SenderId 发送方信箱身份
	SenderType string `gorm:"column:sender_type;type:char(16);not null;comment:发送方类型"`
	SenderId   string `gorm:"column:sender_id;index;type:char(36);not null;comment:发送方标识"`

	// Type 消息类型
	// 0=文本，1=语音，2=文件，3=通话信令
	// 参见 pkg/enum/message_type_enum
	Type int8 `gorm:"column:type;not null;comment:消息类型"`

	// Content 消息内容（结构化 JSON 文本）
	// 投递语义上不可变：编辑时追加 MessageVersion 并切换 CurrentVersionId，
	// 本字段始终保存首版内容作为审计快照
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// CurrentVersionId 当前生效版本
	// 编辑时原子切换；并发编辑遵循 last-writer-wins，不做乐观锁
	CurrentVersionId int64 `gorm:"column:current_version_id;type:bigint;not null;comment:当前版本ID"`

	// AppMessageId 客户端幂等键
	// 客户端重试携带同一 app_message_id 时不会重复建消息
	AppMessageId string `gorm:"column:app_message_id;index;type:varchar(64);default:'';comment:客户端幂等键"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
