// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"time"

	"seqchat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// MessageRepository 消息内容数据访问接口
// 内容不可变，编辑通过追加版本并切换 current_version_id 实现
type MessageRepository interface {
	// Create 创建消息及其首个版本（同一事务）
	Create(message *model.Message, firstVersion *model.MessageVersion) error
	// CreateVersion 追加版本行并原子切换 current_version_id
	// 并发编辑遵循 last-writer-wins，不做乐观锁冲突检测
	CreateVersion(version *model.MessageVersion) error
	// FindByUuids 批量查询消息，空输入直接返回空结果，不发起存储调用
	// msgType 非 nil 时按消息类型过滤；返回内容已解析为当前版本
	FindByUuids(uuids []int64, msgType *int8) ([]model.Message, error)
	// FindVersions 查询某消息的全部版本，按创建顺序排列
	FindVersions(messageUuid int64) ([]model.MessageVersion, error)
	// ExistsByAppMessageId 幂等探测：同一客户端键是否已建过消息
	// 覆盖索引探测，不回表取整行
	ExistsByAppMessageId(appMessageId string, msgType *int8) (bool, error)
	// FindByAppMessageId 按客户端幂等键取回已建消息
	FindByAppMessageId(appMessageId string) (*model.Message, error)
	// SoftDeleteByUuids 撤回时软删除（墓碑），不做物理删除
	SoftDeleteByUuids(uuids []int64) error
}

// SeqRepository 序列日志数据访问接口
// seq_id 由上层分配器发放后整行写入；排序永远以 seq_id 驱动，
// created_at 只允许作为附加收敛条件出现
type SeqRepository interface {
	// Insert 写入单条序列条目
	Insert(entry *model.SeqEntry) error
	// BatchInsert 批量写入一次逻辑发送的扇出条目
	// 失败时调用方按"没有任何条目落盘"处理，不做局部重试
	BatchInsert(entries []*model.SeqEntry) error
	// PullAfter 游标拉取：升序取 seq_id 严格大于 cursor 的条目，
	// 降序取严格小于 cursor 的条目；cursor 为 0 时升序从头、降序从最新开始
	// limit 在 SQL 层生效，不允许全量捞出后内存截断
	PullAfter(objectType, objectId string, cursor int64, limit int, desc bool) ([]model.SeqEntry, error)
	// PullByAppMessageId 同一客户端幂等键范围内的游标拉取（多端续拉）
	PullByAppMessageId(objectType, objectId, appMessageId string, cursor int64, limit int) ([]model.SeqEntry, error)
	// PullConversationWindow 一个或多个会话的回看窗口，结果整体按 seq_id 排序
	// startMs/endMs 为毫秒时间戳，0 表示不限制；仅作收敛条件
	PullConversationWindow(objectType, objectId string, conversationIds []string, cursor int64, startMs, endMs int64, desc bool, limit int) ([]model.SeqEntry, error)
	// PullGroupedLatest 每个会话最新 N 条，窗口函数实现而非逐会话查询
	PullGroupedLatest(objectType, objectId string, conversationIds []string, limitPerConversation int) ([]model.SeqEntry, error)
	// FindConversationIds 信箱日志中出现过的全部会话
	FindConversationIds(objectType, objectId string) ([]string, error)
	// FindBySeqIds 按序号列表回查条目，结果按 seq_id 升序
	FindBySeqIds(objectType, objectId string, seqIds []int64) ([]model.SeqEntry, error)
	// FindStatusChangeStream 状态变更流：对每个被引用的消息 ID，
	// 合并控制条目（按 refer_message_id 命中）与原始 chat 条目（按 magic_message_id 命中），
	// 以 seq_id 最大者为准（last-writer-wins）
	FindStatusChangeStream(objectType, objectId string, referMessageIds []int64) ([]model.SeqEntry, error)
	// FindMinSeqByMagicId 对被编辑消息，返回每个信箱最早的一条 chat 条目
	// 保证即使消息被重复投递，编辑也只需通知每个接收方一次
	FindMinSeqByMagicId(magicMessageId int64) ([]model.SeqEntry, error)
	// BatchUpdateStatus 批量原地更新条目状态，返回受影响行数
	BatchUpdateStatus(objectType, objectId string, seqIds []int64, status int8) (int64, error)
	// UpdateExtra 原地更新条目的 extra 旁路数据
	UpdateExtra(objectType, objectId string, seqId int64, extra string) (bool, error)
	// DeleteByIds 管理性清理：去重并过滤空输入，过滤后为空时
	// 直接返回 0，不发起存储调用
	DeleteByIds(objectType, objectId string, seqIds []int64) (int64, error)
}

// TopicRepository 话题索引数据访问接口
type TopicRepository interface {
	// Create 创建话题
	Create(topic *model.Topic) error
	// Update 更新话题，按 (conversation_id, topic_uuid) 定位
	Update(topic *model.Topic) error
	// Delete 硬删除话题行；TopicMessage 关联不级联清理
	Delete(conversationId, topicUuid string) error
	// FindByTopicUuid 仅凭话题标识查找（不要求已知会话）
	FindByTopicUuid(topicUuid string) (*model.Topic, error)
	// FindByConvAndUuid 按 (conversation_id, topic_uuid) 查找
	FindByConvAndUuid(conversationId, topicUuid string) (*model.Topic, error)
	// AttachMessage 追加话题关联行；重复关联不在本层防护
	AttachMessage(tm *model.TopicMessage) error
	// ListSeqIds 话题内游标拉取，返回裸 seq_id 列表由调用方回查
	ListSeqIds(conversationId, topicUuid, objectType, objectId string, cursor int64, desc bool, limit int, startMs, endMs int64) ([]int64, error)
}

// MailboxSeqRepository 信箱序号水位数据访问接口
type MailboxSeqRepository interface {
	// AllocSegment 以单行原子 UPDATE 前移水位，领取一段连续序号
	// 返回段的闭区间 [start, end]；首次使用的信箱自动建水位行
	AllocSegment(objectType, objectId string, block int64) (start, end int64, err error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db         *gorm.DB             // GORM 数据库实例
	Message    MessageRepository    // 消息内容 Repository
	Seq        SeqRepository        // 序列日志 Repository
	Topic      TopicRepository      // 话题索引 Repository
	MailboxSeq MailboxSeqRepository // 序号水位 Repository
}

// NewRepositories 创建所有 Repository 实例
// db: GORM 数据库实例
// 返回: Repositories 聚合指针
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Message:    NewMessageRepository(db),
		Seq:        NewSeqRepository(db),
		Topic:      NewTopicRepository(db),
		MailboxSeq: NewMailboxSeqRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	// 未挂接数据库时退化为直接执行，内存实现不提供事务语义
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// nowMsRange 将毫秒时间戳区间转换为 time.Time，0 表示未设置
func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
