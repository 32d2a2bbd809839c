package repository

import (
	"errors"

	"seqchat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrapf(err, errorx.CodeNotFound, format, args...)
	}
	return errorx.Wrapf(err, errorx.CodeDBError, format, args...)
}

// wrapWriteError 包装写入类错误
// 写入失败统一归为 CodeWriteFailed，由调用方决定是否在更高层重试
func wrapWriteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, errorx.CodeWriteFailed, msg)
}

// wrapWriteErrorf 包装写入类错误（支持格式化消息）
func wrapWriteErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, errorx.CodeWriteFailed, format, args...)
}

// dedupeInt64 去重并过滤非正值，保持首次出现的顺序
func dedupeInt64(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
