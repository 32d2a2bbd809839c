package repository

import (
	"errors"

	"seqchat_server/internal/model"

	"gorm.io/gorm"
)

type mailboxSeqRepository struct {
	db *gorm.DB
}

// NewMailboxSeqRepository 创建序号水位 Repository
func NewMailboxSeqRepository(db *gorm.DB) MailboxSeqRepository {
	return &mailboxSeqRepository{db: db}
}

// AllocSegment 领取一段连续序号，返回闭区间 [start, end]
// 水位只通过单行原子 UPDATE 前移，多实例并发领段互不覆盖。
// 首次使用的信箱在此建水位行；并发建行撞唯一索引时返回
// WriteFailed，由分配器按普通领段失败重试
func (r *mailboxSeqRepository) AllocSegment(objectType, objectId string, block int64) (start, end int64, err error) {
	if block <= 0 {
		block = 1
	}
	txErr := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.MailboxSeq{}).
			Where("object_type = ? AND object_id = ?", objectType, objectId).
			Update("max_seq", gorm.Expr("max_seq + ?", block))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 信箱首次发号，初始化水位行即视为领到 [1, block]
			row := &model.MailboxSeq{
				ObjectType: objectType,
				ObjectId:   objectId,
				MaxSeq:     block,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
			end = block
			return nil
		}

		var row model.MailboxSeq
		if err := tx.Where("object_type = ? AND object_id = ?", objectType, objectId).
			Take(&row).Error; err != nil {
			return err
		}
		end = row.MaxSeq
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return 0, 0, wrapWriteErrorf(txErr, "并发初始化信箱水位 %s:%s", objectType, objectId)
		}
		return 0, 0, wrapWriteErrorf(txErr, "领取序号段 %s:%s", objectType, objectId)
	}
	return end - block + 1, end, nil
}
