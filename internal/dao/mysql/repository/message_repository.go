package repository

import (
	"errors"

	"seqchat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息内容 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 创建消息及其首个版本
// 两行写入在同一事务内完成，保证消息存在时版本集合非空
func (r *messageRepository) Create(message *model.Message, firstVersion *model.MessageVersion) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Create(firstVersion).Error
	})
	if err != nil {
		return wrapWriteErrorf(err, "创建消息 uuid=%d", message.Uuid)
	}
	return nil
}

// CreateVersion 追加版本行并切换 current_version_id
// 切换是普通 UPDATE，并发编辑时后写者胜出；落败方的版本行仍留在历史中
func (r *messageRepository) CreateVersion(version *model.MessageVersion) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(version).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Message{}).
			Where("uuid = ?", version.MessageUuid).
			Update("current_version_id", version.VersionId)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return wrapDBErrorf(err, "创建消息版本 message_uuid=%d", version.MessageUuid)
	}
	return nil
}

// FindByUuids 批量查询消息
// 空输入直接返回空结果；返回前把每条消息的 Content 解析为其当前版本内容
// 被撤回消息以墓碑形式返回（DeletedAt 有效、Content 置空），
// 调用方据此区分"已撤回"与"内容缺失"
func (r *messageRepository) FindByUuids(uuids []int64, msgType *int8) ([]model.Message, error) {
	uuids = dedupeInt64(uuids)
	if len(uuids) == 0 {
		return []model.Message{}, nil
	}

	query := r.db.Unscoped().Where("uuid IN ?", uuids)
	if msgType != nil {
		query = query.Where("type = ?", *msgType)
	}
	var messages []model.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "批量查询消息 count=%d", len(uuids))
	}
	if len(messages) == 0 {
		return messages, nil
	}

	// 以当前版本内容覆盖首版快照；墓碑行内容置空
	versionIds := make([]int64, 0, len(messages))
	for _, m := range messages {
		versionIds = append(versionIds, m.CurrentVersionId)
	}
	var versions []model.MessageVersion
	if err := r.db.Where("version_id IN ?", versionIds).Find(&versions).Error; err != nil {
		return nil, wrapDBError(err, "查询消息当前版本")
	}
	contentByVersion := make(map[int64]string, len(versions))
	for _, v := range versions {
		contentByVersion[v.VersionId] = v.Content
	}
	for i := range messages {
		if messages[i].DeletedAt.Valid {
			messages[i].Content = ""
			continue
		}
		if content, ok := contentByVersion[messages[i].CurrentVersionId]; ok {
			messages[i].Content = content
		}
	}
	return messages, nil
}

// FindVersions 查询某消息的全部版本，按创建顺序排列
func (r *messageRepository) FindVersions(messageUuid int64) ([]model.MessageVersion, error) {
	var versions []model.MessageVersion
	if err := r.db.Where("message_uuid = ?", messageUuid).
		Order("version_id ASC").Find(&versions).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息版本 message_uuid=%d", messageUuid)
	}
	return versions, nil
}

// ExistsByAppMessageId 幂等探测
// 只取常量列，命中 app_message_id 索引即可返回，不回表
func (r *messageRepository) ExistsByAppMessageId(appMessageId string, msgType *int8) (bool, error) {
	if appMessageId == "" {
		return false, nil
	}
	query := r.db.Model(&model.Message{}).Select("1").Where("app_message_id = ?", appMessageId)
	if msgType != nil {
		query = query.Where("type = ?", *msgType)
	}
	var one int
	err := query.Limit(1).Take(&one).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrapDBErrorf(err, "幂等探测 app_message_id=%s", appMessageId)
	}
	return true, nil
}

// FindByAppMessageId 按客户端幂等键取回已建消息
// 未命中按空结果处理，返回 (nil, nil)
func (r *messageRepository) FindByAppMessageId(appMessageId string) (*model.Message, error) {
	if appMessageId == "" {
		return nil, nil
	}
	var message model.Message
	err := r.db.Where("app_message_id = ?", appMessageId).Take(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "查询消息 app_message_id=%s", appMessageId)
	}
	return &message, nil
}

// SoftDeleteByUuids 批量软删除消息（撤回墓碑）
func (r *messageRepository) SoftDeleteByUuids(uuids []int64) error {
	uuids = dedupeInt64(uuids)
	if len(uuids) == 0 {
		return nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Delete(&model.Message{}).Error; err != nil {
		return wrapDBError(err, "软删除消息")
	}
	return nil
}
