package model

import "time"

// MailboxSeq 每信箱一行的序号水位
// max_seq 只通过单行原子 UPDATE 前移，是段分配器的回源依据
// 绝不使用进程内计数器，多实例共享同一水位
type MailboxSeq struct {
	Id int64 `gorm:"primarykey"`

	ObjectType string `gorm:"column:object_type;uniqueIndex:idx_mailbox,priority:1;type:char(16);not null;comment:信箱类型"`
	ObjectId   string `gorm:"column:object_id;uniqueIndex:idx_mailbox,priority:2;type:char(36);not null;comment:信箱标识"`

	// MaxSeq 已发放的最大序号（含）
	MaxSeq int64 `gorm:"column:max_seq;type:bigint;not null;default:0;comment:已发放最大序号"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定表名
func (MailboxSeq) TableName() string {
	return "mailbox_seq"
}
