package model

import "time"

// MessageVersion 消息版本模型，一次编辑一行
// 追加写入，按 version_id 排序；消息存在时版本集合永不为空
type MessageVersion struct {
	Id int64 `gorm:"primarykey"`

	// VersionId 版本唯一标识，雪花 ID
	VersionId int64 `gorm:"column:version_id;uniqueIndex;type:bigint;not null;comment:版本雪花ID"`

	// MessageUuid 所属消息
	MessageUuid int64 `gorm:"column:message_uuid;index:idx_message_version,priority:1;type:bigint;not null;comment:所属消息ID"`

	// Content 该版本的内容
	Content string `gorm:"column:content;type:TEXT;comment:版本内容"`

	CreatedAt time.Time `gorm:"index:idx_message_version,priority:2"`
}

// TableName 指定表名
func (MessageVersion) TableName() string {
	return "message_version"
}
