package model

import "time"

// SeqEntry 序列日志条目，每个（接收信箱 × 投递事件）一行
// seq_id 在 (object_type, object_id) 内严格单调递增，是该信箱唯一的总序
// 写入后 seq_type / refer_message_id / magic_message_id / conversation_id 不可变，
// 仅 status 与 extra 允许原地更新
type SeqEntry struct {
	Id int64 `gorm:"primarykey"`

	// SeqId 信箱内单调序号，由段分配器发放
	// 唯一索引禁止同一信箱出现重复序号；允许空洞（段丢弃）
	SeqId int64 `gorm:"column:seq_id;uniqueIndex:idx_mailbox_seq,priority:3;type:bigint;not null;comment:信箱内序号"`

	// ObjectType / ObjectId 信箱身份
	ObjectType string `gorm:"column:object_type;uniqueIndex:idx_mailbox_seq,priority:1;type:char(16);not null;comment:信箱类型"`
	ObjectId   string `gorm:"column:object_id;uniqueIndex:idx_mailbox_seq,priority:2;type:char(36);not null;comment:信箱标识"`

	// ConversationId 会话标识
	ConversationId string `gorm:"column:conversation_id;index;type:char(36);not null;comment:会话标识"`

	// TopicUuid 所属话题，空串表示不属于任何话题
	// 话题归属在建条目时固定，不支持移动
	TopicUuid string `gorm:"column:topic_uuid;type:char(36);default:'';comment:话题标识"`

	// SeqType 条目类型：chat 或各类控制条目
	// 参见 pkg/enum/seq_type_enum
	SeqType int8 `gorm:"column:seq_type;not null;comment:条目类型"`

	// ReferMessageId 控制条目引用的原始消息 ID
	// chat 条目为 0
	ReferMessageId int64 `gorm:"column:refer_message_id;index;type:bigint;default:0;comment:引用消息ID"`

	// MagicMessageId chat 条目关联的消息内容 ID
	// 多条 SeqEntry（每接收方一条）可引用同一消息
	MagicMessageId int64 `gorm:"column:magic_message_id;index;type:bigint;default:0;comment:消息内容ID"`

	// AppMessageId 客户端幂等键，支持同一逻辑发送的多端续拉
	AppMessageId string `gorm:"column:app_message_id;index;type:varchar(64);default:'';comment:客户端幂等键"`

	// ReceiveList 本次逻辑发送的接收方列表（JSON）
	ReceiveList string `gorm:"column:receive_list;type:TEXT;comment:接收方列表"`

	// Extra 结构化旁路数据（JSON），默认 "{}" 而非 NULL，保证下游解码统一
	// 写入后允许原地更新（编辑关系记账等）
	Extra string `gorm:"column:extra;type:TEXT;comment:旁路数据"`

	// Status 条目状态，允许批量原地更新做已读/撤回记账
	// 参见 pkg/enum/seq_status_enum
	Status int8 `gorm:"column:status;not null;default:0;comment:条目状态"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (SeqEntry) TableName() string {
	return "seq_entry"
}

// MailboxKey 返回信箱的字符串键，用于缓存键和连接路由
func (s *SeqEntry) MailboxKey() string {
	return s.ObjectType + ":" + s.ObjectId
}
