package repository

import (
	"errors"

	"seqchat_server/internal/model"

	"gorm.io/gorm"
)

type topicRepository struct {
	db *gorm.DB
}

// NewTopicRepository 创建话题索引 Repository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

// Create 创建话题
func (r *topicRepository) Create(topic *model.Topic) error {
	if err := r.db.Create(topic).Error; err != nil {
		return wrapWriteErrorf(err, "创建话题 conversation_id=%s", topic.ConversationId)
	}
	return nil
}

// Update 更新话题名称/描述，按 (conversation_id, topic_uuid) 定位
func (r *topicRepository) Update(topic *model.Topic) error {
	res := r.db.Model(&model.Topic{}).
		Where("conversation_id = ? AND topic_uuid = ?", topic.ConversationId, topic.TopicUuid).
		Updates(map[string]interface{}{
			"name":        topic.Name,
			"description": topic.Description,
		})
	if res.Error != nil {
		return wrapDBErrorf(res.Error, "更新话题 topic_uuid=%s", topic.TopicUuid)
	}
	if res.RowsAffected == 0 {
		return wrapDBErrorf(gorm.ErrRecordNotFound, "更新话题 topic_uuid=%s", topic.TopicUuid)
	}
	return nil
}

// Delete 硬删除话题行
// TopicMessage 关联行不级联删除，孤儿关联由离线任务清理
func (r *topicRepository) Delete(conversationId, topicUuid string) error {
	if err := r.db.Where("conversation_id = ? AND topic_uuid = ?", conversationId, topicUuid).
		Delete(&model.Topic{}).Error; err != nil {
		return wrapDBErrorf(err, "删除话题 topic_uuid=%s", topicUuid)
	}
	return nil
}

// FindByTopicUuid 仅凭话题标识查找
// 用于只知道 topic_uuid 的场景；未命中返回 (nil, nil)
func (r *topicRepository) FindByTopicUuid(topicUuid string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.Where("topic_uuid = ?", topicUuid).Take(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "查询话题 topic_uuid=%s", topicUuid)
	}
	return &topic, nil
}

// FindByConvAndUuid 按 (conversation_id, topic_uuid) 查找
func (r *topicRepository) FindByConvAndUuid(conversationId, topicUuid string) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.Where("conversation_id = ? AND topic_uuid = ?", conversationId, topicUuid).
		Take(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "查询话题 conversation_id=%s topic_uuid=%s", conversationId, topicUuid)
	}
	return &topic, nil
}

// AttachMessage 追加话题关联行
// 同一 seq_id 的重复关联不在本层防护，幂等性由调用方保证
func (r *topicRepository) AttachMessage(tm *model.TopicMessage) error {
	if err := r.db.Create(tm).Error; err != nil {
		return wrapWriteErrorf(err, "关联话题消息 topic_uuid=%s seq_id=%d", tm.TopicUuid, tm.SeqId)
	}
	return nil
}

// ListSeqIds 话题内游标拉取
// 与序列日志同一套游标不变式：seq_id 驱动排序，时间区间仅收敛
func (r *topicRepository) ListSeqIds(conversationId, topicUuid, objectType, objectId string, cursor int64, desc bool, limit int, startMs, endMs int64) ([]int64, error) {
	query := r.db.Model(&model.TopicMessage{}).
		Where("conversation_id = ? AND topic_uuid = ? AND object_type = ? AND object_id = ?",
			conversationId, topicUuid, objectType, objectId)
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

	var seqIds []int64
	if err := query.Limit(limit).Pluck("seq_id", &seqIds).Error; err != nil {
		return nil, wrapDBErrorf(err, "话题消息列表 topic_uuid=%s", topicUuid)
	}
	return seqIds, nil
}
