package model

import "time"

// TopicMessage 话题与序列条目的关联行，追加写入
// 每条属于话题的 chat SeqEntry 一行；SeqEntry 的完整键是
// (object_type, object_id, seq_id)，因此关联行同样携带信箱身份
type TopicMessage struct {
	Id int64 `gorm:"primarykey"`

	ConversationId string `gorm:"column:conversation_id;index:idx_topic_list,priority:1;type:char(36);not null;comment:会话标识"`
	TopicUuid      string `gorm:"column:topic_uuid;index:idx_topic_list,priority:2;type:char(36);not null;comment:话题标识"`

	// ObjectType / ObjectId 条目所在信箱
	ObjectType string `gorm:"column:object_type;index:idx_topic_list,priority:3;type:char(16);not null;comment:信箱类型"`
	ObjectId   string `gorm:"column:object_id;index:idx_topic_list,priority:4;type:char(36);not null;comment:信箱标识"`

	// SeqId 关联的序列条目序号，话题归属固定不迁移
	SeqId int64 `gorm:"column:seq_id;index:idx_topic_list,priority:5;type:bigint;not null;comment:条目序号"`

	CreatedAt time.Time `gorm:"index"`
}

// TableName 指定表名
func (TopicMessage) TableName() string {
	return "topic_message"
}
