package model

import "time"

// Topic 话题模型，会话内的命名消息分组
// (conversation_id, topic_uuid) 唯一确定一个话题
// 删除为硬删除，TopicMessage 关联不做级联清理（由外部离线任务处理）
type Topic struct {
	Id int64 `gorm:"primarykey"`

	// TopicUuid 话题唯一标识
	TopicUuid string `gorm:"column:topic_uuid;uniqueIndex:idx_conv_topic,priority:2;index;type:char(36);not null;comment:话题标识"`

	// ConversationId 所属会话
	ConversationId string `gorm:"column:conversation_id;uniqueIndex:idx_conv_topic,priority:1;type:char(36);not null;comment:会话标识"`

	// Name 话题名称，长度上限 50 字符
	Name string `gorm:"column:name;type:varchar(50);not null;comment:话题名称"`

	// Description 话题描述
	Description string `gorm:"column:description;type:varchar(255);default:'';comment:话题描述"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (Topic) TableName() string {
	return "topic"
}
