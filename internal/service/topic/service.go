// Package topic 实现话题业务逻辑
// 话题是会话内的命名消息分组，归属在建条目时固定
package topic

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"seqchat_server/internal/config"
	"seqchat_server/internal/dao/mysql/repository"
	myredis "seqchat_server/internal/dao/redis"
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/dto/respond"
	"seqchat_server/internal/model"
	"seqchat_server/pkg/constants"
	"seqchat_server/pkg/errorx"

	"github.com/google/uuid"
)

// Viewer 投递视图依赖
// 话题层只维护 (话题, 序号) 关联，视图组装交给 delivery Service
type Viewer interface {
	// ViewsBySeqIds 按序号列表回查并组装视图，保持入参顺序
	ViewsBySeqIds(objectType, objectId string, seqIds []int64) ([]respond.DeliveryViewRespond, error)
}

// topicService 话题业务逻辑实现
type topicService struct {
	repos  *repository.Repositories
	viewer Viewer
	cache  myredis.AsyncCacheService
}

// NewTopicService 构造函数
func NewTopicService(repos *repository.Repositories, viewer Viewer, cache myredis.AsyncCacheService) *topicService {
	return &topicService{repos: repos, viewer: viewer, cache: cache}
}

func topicCacheKey(conversationId, topicUuid string) string {
	return "topic_" + conversationId + "_" + topicUuid
}

// validateName 话题名称校验：非空且不超过 50 字符（按 rune 计）
func validateName(name string) error {
	if name == "" {
		return errorx.New(errorx.CodeInvalidParam, "话题名称不能为空")
	}
	if utf8.RuneCountInString(name) > constants.TOPIC_NAME_MAX_LEN {
		return errorx.Newf(errorx.CodeInvalidParam, "话题名称过长，上限 %d 字符", constants.TOPIC_NAME_MAX_LEN)
	}
	return nil
}

// CreateTopic 创建话题
// 校验在 Service 层完成，不依赖 HTTP 绑定标签，内部调用方同样受约束
func (t *topicService) CreateTopic(req request.CreateTopicRequest) (*respond.TopicRespond, error) {
	if req.ConversationId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "会话标识不能为空")
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	topic := &model.Topic{
		TopicUuid:      uuid.New().String(),
		ConversationId: req.ConversationId,
		Name:           req.Name,
		Description:    req.Description,
	}
	if err := t.repos.Topic.Create(topic); err != nil {
		zap.L().Error("创建话题失败", zap.Error(err))
		return nil, err
	}
	return topicToRespond(topic), nil
}

// UpdateTopic 更新话题名称/描述
func (t *topicService) UpdateTopic(req request.UpdateTopicRequest) (*respond.TopicRespond, error) {
	if req.Name != "" {
		if err := validateName(req.Name); err != nil {
			return nil, err
		}
	}

	existing, err := t.repos.Topic.FindByConvAndUuid(req.ConversationId, req.TopicUuid)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "话题不存在 topic_uuid=%s", req.TopicUuid)
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if err := t.repos.Topic.Update(existing); err != nil {
		zap.L().Error("更新话题失败", zap.Error(err))
		return nil, err
	}

	t.invalidateCache(req.ConversationId, req.TopicUuid)
	return topicToRespond(existing), nil
}

// DeleteTopic 删除话题
// 话题行硬删除；TopicMessage 关联与条目上的 topic_uuid 不级联清理，
// 由离线任务兜底
func (t *topicService) DeleteTopic(req request.DeleteTopicRequest) error {
	if err := t.repos.Topic.Delete(req.ConversationId, req.TopicUuid); err != nil {
		zap.L().Error("删除话题失败", zap.Error(err))
		return err
	}
	t.invalidateCache(req.ConversationId, req.TopicUuid)
	return nil
}

// GetTopic 查询话题，短缓存降低首屏读放大
func (t *topicService) GetTopic(conversationId, topicUuid string) (*respond.TopicRespond, error) {
	cacheKey := topicCacheKey(conversationId, topicUuid)
	if t.cache != nil {
		if cached, err := t.cache.Get(context.Background(), cacheKey); err == nil && cached != "" {
			var rsp respond.TopicRespond
			if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
				return &rsp, nil
			}
			zap.L().Error("解析话题缓存失败", zap.String("key", cacheKey))
		}
	}

	topic, err := t.repos.Topic.FindByConvAndUuid(conversationId, topicUuid)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "话题不存在 topic_uuid=%s", topicUuid)
	}

	rsp := topicToRespond(topic)
	if t.cache != nil {
		t.cache.SubmitTask(func() {
			raw, err := json.Marshal(rsp)
			if err != nil {
				return
			}
			ttl := time.Duration(constants.REDIS_TIMEOUT) * time.Minute
			if err := t.cache.Set(context.Background(), cacheKey, string(raw), ttl); err != nil {
				zap.L().Error("写话题缓存失败", zap.Error(err))
			}
		})
	}
	return rsp, nil
}

// GetTopicByUuid 仅凭话题标识查询，不要求已知所属会话
// 低频管理路径，不走缓存
func (t *topicService) GetTopicByUuid(topicUuid string) (*respond.TopicRespond, error) {
	topic, err := t.repos.Topic.FindByTopicUuid(topicUuid)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "话题不存在 topic_uuid=%s", topicUuid)
	}
	return topicToRespond(topic), nil
}

// AttachMessage 将已投递条目补挂到话题
// 条目必须存在且属于该会话，话题必须存在于该会话
func (t *topicService) AttachMessage(req request.AttachTopicMessageRequest) error {
	topic, err := t.repos.Topic.FindByConvAndUuid(req.ConversationId, req.TopicUuid)
	if err != nil {
		return err
	}
	if topic == nil {
		return errorx.Newf(errorx.CodeNotFound, "话题不存在 topic_uuid=%s", req.TopicUuid)
	}

	entries, err := t.repos.Seq.FindBySeqIds(req.ObjectType, req.ObjectId, []int64{req.SeqId})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errorx.Newf(errorx.CodeNotFound, "条目不存在 seq_id=%d", req.SeqId)
	}
	if entries[0].ConversationId != req.ConversationId {
		return errorx.New(errorx.CodeInvalidParam, "条目不属于该会话")
	}

	tm := &model.TopicMessage{
		ConversationId: req.ConversationId,
		TopicUuid:      req.TopicUuid,
		ObjectType:     req.ObjectType,
		ObjectId:       req.ObjectId,
		SeqId:          req.SeqId,
	}
	if err := t.repos.Topic.AttachMessage(tm); err != nil {
		zap.L().Error("话题挂载失败", zap.Error(err))
		return err
	}
	return nil
}

// ListMessages 话题内游标拉取
// 先按话题索引取裸序号，再回查条目并组装视图；话题被删除后
// 既有关联仍可读（不级联清理），按话题不存在处理更符合直觉，
// 故先校验话题仍然存在
func (t *topicService) ListMessages(req request.TopicMessageListRequest) (*respond.PullRespond, error) {
	topic, err := t.repos.Topic.FindByConvAndUuid(req.ConversationId, req.TopicUuid)
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, errorx.Newf(errorx.CodeNotFound, "话题不存在 topic_uuid=%s", req.TopicUuid)
	}

	limit := req.Limit
	conf := config.GetConfig().PullConfig
	if limit <= 0 {
		limit = conf.DefaultPageSize
		if limit <= 0 {
			limit = constants.DEFAULT_PAGE_SIZE
		}
	}
	if max := conf.MaxPageSize; max > 0 && limit > max {
		limit = max
	} else if limit > constants.MAX_PAGE_SIZE {
		limit = constants.MAX_PAGE_SIZE
	}

	seqIds, err := t.repos.Topic.ListSeqIds(
		req.ConversationId, req.TopicUuid, req.ObjectType, req.ObjectId,
		req.Cursor, req.Desc, limit+1, req.StartMs, req.EndMs)
	if err != nil {
		zap.L().Error("话题序号拉取失败", zap.Error(err))
		return nil, err
	}

	hasMore := false
	if len(seqIds) > limit {
		hasMore = true
		seqIds = seqIds[:limit]
	}

	views, err := t.viewer.ViewsBySeqIds(req.ObjectType, req.ObjectId, seqIds)
	if err != nil {
		return nil, err
	}
	var nextCursor int64
	if len(seqIds) > 0 {
		nextCursor = seqIds[len(seqIds)-1]
	}
	return &respond.PullRespond{
		Entries:    views,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// invalidateCache 异步失效话题缓存
func (t *topicService) invalidateCache(conversationId, topicUuid string) {
	if t.cache == nil {
		return
	}
	key := topicCacheKey(conversationId, topicUuid)
	t.cache.SubmitTask(func() {
		if err := t.cache.Delete(context.Background(), key); err != nil {
			zap.L().Error("失效话题缓存失败", zap.Error(err))
		}
	})
}

// topicToRespond 话题模型转响应
func topicToRespond(topic *model.Topic) *respond.TopicRespond {
	return &respond.TopicRespond{
		TopicUuid:      topic.TopicUuid,
		ConversationId: topic.ConversationId,
		Name:           topic.Name,
		Description:    topic.Description,
		CreatedAt:      topic.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      topic.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
