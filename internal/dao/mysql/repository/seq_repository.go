package repository

import (
	"sort"

	"seqchat_server/internal/model"
	"seqchat_server/pkg/constants"
	"seqchat_server/pkg/enum/seq_type_enum"

	"gorm.io/gorm"
)

type seqRepository struct {
	db *gorm.DB
}

// NewSeqRepository 创建序列日志 Repository
func NewSeqRepository(db *gorm.DB) SeqRepository {
	return &seqRepository{db: db}
}

// normalizeEntry 写入前的结构化兜底
// extra 统一为 "{}" 而非空串/NULL，保证下游解码不用判空
func normalizeEntry(entry *model.SeqEntry) {
	if entry.Extra == "" {
		entry.Extra = constants.EXTRA_EMPTY_JSON
	}
}

// Insert 写入单条序列条目
func (r *seqRepository) Insert(entry *model.SeqEntry) error {
	normalizeEntry(entry)
	if err := r.db.Create(entry).Error; err != nil {
		return wrapWriteErrorf(err, "写入序列条目 mailbox=%s seq_id=%d", entry.MailboxKey(), entry.SeqId)
	}
	return nil
}

// BatchInsert 批量写入扇出条目
// 单条 INSERT 多值语句，失败即整体失败，调用方按"未落盘"处理
func (r *seqRepository) BatchInsert(entries []*model.SeqEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		normalizeEntry(entry)
	}
	if err := r.db.Create(&entries).Error; err != nil {
		return wrapWriteErrorf(err, "批量写入序列条目 count=%d", len(entries))
	}
	return nil
}

// PullAfter 游标拉取
// 排序永远以 seq_id 驱动而非 created_at：时钟偏移或批量落盘会让
// 时间序产生重复页或漏页，序号序不会
func (r *seqRepository) PullAfter(objectType, objectId string, cursor int64, limit int, desc bool) ([]model.SeqEntry, error) {
	query := r.db.Where("object_type = ? AND object_id = ?", objectType, objectId)
	if desc {
		if cursor > 0 {
			query = query.Where("seq_id < ?", cursor)
		}
		query = query.Order("seq_id DESC")
	} else {
		query = query.Where("seq_id > ?", cursor).Order("seq_id ASC")
	}
	var entries []model.SeqEntry
	if err := query.Limit(limit).Find(&entries).Error; err != nil {
		return nil, wrapDBErrorf(err, "拉取序列条目 mailbox=%s:%s cursor=%d", objectType, objectId, cursor)
	}
	return entries, nil
}

// PullByAppMessageId 同一客户端幂等键范围内的升序游标拉取
func (r *seqRepository) PullByAppMessageId(objectType, objectId, appMessageId string, cursor int64, limit int) ([]model.SeqEntry, error) {
	var entries []model.SeqEntry
	err := r.db.Where("object_type = ? AND object_id = ? AND app_message_id = ? AND seq_id > ?",
		objectType, objectId, appMessageId, cursor).
		Order("seq_id ASC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "按幂等键拉取 app_message_id=%s", appMessageId)
	}
	return entries, nil
}

// PullConversationWindow 会话回看窗口
// 单信箱日志本身就是全序，多个会话合并只是一个 IN 条件，
// 结果天然整体按 seq_id 排序；时间区间仅作收敛条件，不参与排序
func (r *seqRepository) PullConversationWindow(objectType, objectId string, conversationIds []string, cursor int64, startMs, endMs int64, desc bool, limit int) ([]model.SeqEntry, error) {
	if len(conversationIds) == 0 {
		return []model.SeqEntry{}, nil
	}
	query := r.db.Where("object_type = ? AND object_id = ? AND conversation_id IN ?",
		objectType, objectId, conversationIds)
	if startMs > 0 {
		query = query.Where("created_at >= ?", msToTime(startMs))
	}
	if endMs > 0 {
		query = query.Where("created_at <= ?", msToTime(endMs))
	}
	if desc {
		if cursor > 0 {
			query = query.Where("seq_id < ?", cursor)
		}
		query = query.Order("seq_id DESC")
	} else {
		query = query.Where("seq_id > ?", cursor).Order("seq_id ASC")
	}
	var entries []model.SeqEntry
	if err := query.Limit(limit).Find(&entries).Error; err != nil {
		return nil, wrapDBErrorf(err, "会话窗口拉取 mailbox=%s:%s", objectType, objectId)
	}
	return entries, nil
}

// PullGroupedLatest 每会话最新 N 条
// 窗口函数一次取回：按会话分区、seq_id 降序编号，保留 rank <= N
// 逐会话查询的方案随会话列表长度线性放大，不采用
func (r *seqRepository) PullGroupedLatest(objectType, objectId string, conversationIds []string, limitPerConversation int) ([]model.SeqEntry, error) {
	if len(conversationIds) == 0 {
		return []model.SeqEntry{}, nil
	}
	var entries []model.SeqEntry
	err := r.db.Raw(`
		SELECT id, seq_id, object_type, object_id, conversation_id, topic_uuid,
		       seq_type, refer_message_id, magic_message_id, app_message_id,
		       receive_list, extra, status, created_at, updated_at
		FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY conversation_id ORDER BY seq_id DESC
			) AS rn
			FROM seq_entry
			WHERE object_type = ? AND object_id = ? AND conversation_id IN ?
		) ranked
		WHERE ranked.rn <= ?
		ORDER BY conversation_id, seq_id DESC`,
		objectType, objectId, conversationIds, limitPerConversation).
		Scan(&entries).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "分组最新拉取 mailbox=%s:%s", objectType, objectId)
	}
	return entries, nil
}

// FindBySeqIds 按序号列表回查条目
// 话题拉取先取裸序号再回查，复用信箱唯一索引
func (r *seqRepository) FindBySeqIds(objectType, objectId string, seqIds []int64) ([]model.SeqEntry, error) {
	seqIds = dedupeInt64(seqIds)
	if len(seqIds) == 0 {
		return []model.SeqEntry{}, nil
	}
	var entries []model.SeqEntry
	err := r.db.Where("object_type = ? AND object_id = ? AND seq_id IN ?", objectType, objectId, seqIds).
		Order("seq_id ASC").Find(&entries).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "按序号回查条目 mailbox=%s:%s", objectType, objectId)
	}
	return entries, nil
}

// FindConversationIds 信箱日志中出现过的全部会话
func (r *seqRepository) FindConversationIds(objectType, objectId string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.SeqEntry{}).
		Distinct("conversation_id").
		Where("object_type = ? AND object_id = ?", objectType, objectId).
		Pluck("conversation_id", &ids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询信箱会话列表 mailbox=%s:%s", objectType, objectId)
	}
	return ids, nil
}

// FindStatusChangeStream 状态变更流
// 状态变化以追加控制条目记录而非改写历史，因此读取需要两个
// 索引范围查询再做归并：控制条目按 refer_message_id 命中，原始
// chat 条目按 magic_message_id 命中；同一逻辑消息取 seq_id 最大者
func (r *seqRepository) FindStatusChangeStream(objectType, objectId string, referMessageIds []int64) ([]model.SeqEntry, error) {
	referMessageIds = dedupeInt64(referMessageIds)
	if len(referMessageIds) == 0 {
		return []model.SeqEntry{}, nil
	}

	var controls []model.SeqEntry
	err := r.db.Where("object_type = ? AND object_id = ? AND refer_message_id IN ? AND seq_type <> ?",
		objectType, objectId, referMessageIds, seq_type_enum.Chat).
		Find(&controls).Error
	if err != nil {
		return nil, wrapDBError(err, "查询状态控制条目")
	}

	var originals []model.SeqEntry
	err = r.db.Where("object_type = ? AND object_id = ? AND magic_message_id IN ? AND seq_type = ?",
		objectType, objectId, referMessageIds, seq_type_enum.Chat).
		Find(&originals).Error
	if err != nil {
		return nil, wrapDBError(err, "查询原始聊天条目")
	}

	return mergeStatusEntries(controls, originals), nil
}

// mergeStatusEntries 按逻辑消息归并，seq_id 最大者胜出
// 独立成纯函数便于单测归并语义
func mergeStatusEntries(controls, originals []model.SeqEntry) []model.SeqEntry {
	latest := make(map[int64]model.SeqEntry)
	keep := func(messageId int64, entry model.SeqEntry) {
		if cur, ok := latest[messageId]; !ok || entry.SeqId > cur.SeqId {
			latest[messageId] = entry
		}
	}
	for _, e := range originals {
		keep(e.MagicMessageId, e)
	}
	for _, e := range controls {
		keep(e.ReferMessageId, e)
	}

	merged := make([]model.SeqEntry, 0, len(latest))
	for _, e := range latest {
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].SeqId < merged[j].SeqId })
	return merged
}

// FindMinSeqByMagicId 每个信箱最早的一条 chat 条目
// 消息可能被重复投递到同一信箱，编辑通知按信箱去重只取首条
func (r *seqRepository) FindMinSeqByMagicId(magicMessageId int64) ([]model.SeqEntry, error) {
	var entries []model.SeqEntry
	err := r.db.Raw(`
		SELECT s.id, s.seq_id, s.object_type, s.object_id, s.conversation_id, s.topic_uuid,
		       s.seq_type, s.refer_message_id, s.magic_message_id, s.app_message_id,
		       s.receive_list, s.extra, s.status, s.created_at, s.updated_at
		FROM seq_entry s
		JOIN (
			SELECT object_type, object_id, MIN(seq_id) AS min_seq
			FROM seq_entry
			WHERE magic_message_id = ? AND seq_type = ?
			GROUP BY object_type, object_id
		) m ON s.object_type = m.object_type
		   AND s.object_id = m.object_id
		   AND s.seq_id = m.min_seq`,
		magicMessageId, seq_type_enum.Chat).
		Scan(&entries).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询最早投递条目 magic_message_id=%d", magicMessageId)
	}
	return entries, nil
}

// BatchUpdateStatus 批量原地更新状态
// 单字段单语句更新，不触碰 seq_type / refer_message_id 等不可变字段
func (r *seqRepository) BatchUpdateStatus(objectType, objectId string, seqIds []int64, status int8) (int64, error) {
	seqIds = dedupeInt64(seqIds)
	if len(seqIds) == 0 {
		return 0, nil
	}
	res := r.db.Model(&model.SeqEntry{}).
		Where("object_type = ? AND object_id = ? AND seq_id IN ?", objectType, objectId, seqIds).
		Update("status", status)
	if res.Error != nil {
		return 0, wrapDBError(res.Error, "批量更新条目状态")
	}
	return res.RowsAffected, nil
}

// UpdateExtra 原地更新单条目的 extra
func (r *seqRepository) UpdateExtra(objectType, objectId string, seqId int64, extra string) (bool, error) {
	if extra == "" {
		extra = constants.EXTRA_EMPTY_JSON
	}
	res := r.db.Model(&model.SeqEntry{}).
		Where("object_type = ? AND object_id = ? AND seq_id = ?", objectType, objectId, seqId).
		Update("extra", extra)
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "更新条目 extra seq_id=%d", seqId)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByIds 管理性清理畸形/重复条目
// 去重并过滤空输入，过滤后为空时直接返回 0，不发起存储调用
func (r *seqRepository) DeleteByIds(objectType, objectId string, seqIds []int64) (int64, error) {
	seqIds = dedupeInt64(seqIds)
	if len(seqIds) == 0 {
		return 0, nil
	}
	res := r.db.Where("object_type = ? AND object_id = ? AND seq_id IN ?", objectType, objectId, seqIds).
		Delete(&model.SeqEntry{})
	if res.Error != nil {
		return 0, wrapDBError(res.Error, "删除序列条目")
	}
	return res.RowsAffected, nil
}
