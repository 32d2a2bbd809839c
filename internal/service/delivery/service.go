// Package delivery 实现序列投递业务逻辑
// 负责扇出写入、各类游标拉取和条目原地记账
package delivery

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"seqchat_server/internal/config"
	"seqchat_server/internal/dao/mysql/repository"
	myredis "seqchat_server/internal/dao/redis"
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/dto/respond"
	"seqchat_server/internal/infrastructure/mq"
	"seqchat_server/internal/model"
	"seqchat_server/pkg/constants"
	"seqchat_server/pkg/enum/seq_status_enum"
	"seqchat_server/pkg/enum/seq_type_enum"
	"seqchat_server/pkg/errorx"
)

// SeqAllocator 序号分配依赖
// 由 internal/seqalloc 的段分配器实现，测试时注入内存假实现
type SeqAllocator interface {
	Malloc(ctx context.Context, objectType, objectId string, need int64) (int64, error)
}

// deliveryService 投递业务逻辑实现
type deliveryService struct {
	repos *repository.Repositories
	alloc SeqAllocator
	cache myredis.AsyncCacheService
}

// NewDeliveryService 构造函数
func NewDeliveryService(repos *repository.Repositories, alloc SeqAllocator, cache myredis.AsyncCacheService) *deliveryService {
	return &deliveryService{repos: repos, alloc: alloc, cache: cache}
}

// clampLimit 分页上下限收敛
// limit 最终在存储层 SQL 生效，这里只做边界裁剪
func clampLimit(limit int) int {
	conf := config.GetConfig().PullConfig
	def := conf.DefaultPageSize
	max := conf.MaxPageSize
	if def <= 0 {
		def = constants.DEFAULT_PAGE_SIZE
	}
	if max <= 0 {
		max = constants.MAX_PAGE_SIZE
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// dedupeMailboxes 接收方去重，保持原始顺序
func dedupeMailboxes(refs []request.MailboxRef) []request.MailboxRef {
	seen := make(map[string]struct{}, len(refs))
	out := make([]request.MailboxRef, 0, len(refs))
	for _, ref := range refs {
		key := ref.ObjectType + ":" + ref.ObjectId
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// appendEntries 落盘扇出条目
// 单接收方（私聊的常见情形）走单条 INSERT，多接收方走多值语句
func appendEntries(seqRepo repository.SeqRepository, entries []*model.SeqEntry) error {
	if len(entries) == 1 {
		return seqRepo.Insert(entries[0])
	}
	return seqRepo.BatchInsert(entries)
}

// ==================== 扇出写入 ====================

// FanoutChat 为一次逻辑发送向每个接收信箱追加 chat 条目
// 序号分配与落盘分两步：分配成功但落盘失败时序号作废形成空洞，
// 空洞是允许的，重复序号不允许
func (d *deliveryService) FanoutChat(msg *model.Message, topicUuid string, receivers []request.MailboxRef, extra string) ([]respond.ReceiverSeqRespond, error) {
	receivers = dedupeMailboxes(receivers)
	if len(receivers) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "接收方列表为空")
	}

	receiveListJson, err := json.Marshal(receivers)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "序列化接收方列表失败")
	}

	ctx := context.Background()
	entries := make([]*model.SeqEntry, 0, len(receivers))
	results := make([]respond.ReceiverSeqRespond, 0, len(receivers))
	for _, ref := range receivers {
		seqId, err := d.alloc.Malloc(ctx, ref.ObjectType, ref.ObjectId, 1)
		if err != nil {
			zap.L().Error("分配序号失败", zap.String("mailbox", ref.ObjectType+":"+ref.ObjectId), zap.Error(err))
			return nil, err
		}
		entries = append(entries, &model.SeqEntry{
			SeqId:          seqId,
			ObjectType:     ref.ObjectType,
			ObjectId:       ref.ObjectId,
			ConversationId: msg.ConversationId,
			TopicUuid:      topicUuid,
			SeqType:        seq_type_enum.Chat,
			MagicMessageId: msg.Uuid,
			AppMessageId:   msg.AppMessageId,
			ReceiveList:    string(receiveListJson),
			Extra:          extra,
			Status:         seq_status_enum.Normal,
		})
		results = append(results, respond.ReceiverSeqRespond{
			ObjectType: ref.ObjectType,
			ObjectId:   ref.ObjectId,
			SeqId:      seqId,
		})
	}

	// 条目与话题关联在同一事务内落盘，部分成功不可接受
	err = d.repos.Transaction(func(tx *repository.Repositories) error {
		if err := appendEntries(tx.Seq, entries); err != nil {
			return err
		}
		if topicUuid == "" {
			return nil
		}
		for _, entry := range entries {
			tm := &model.TopicMessage{
				ConversationId: entry.ConversationId,
				TopicUuid:      topicUuid,
				ObjectType:     entry.ObjectType,
				ObjectId:       entry.ObjectId,
				SeqId:          entry.SeqId,
			}
			if err := tx.Topic.AttachMessage(tm); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.afterFanout(msg.ConversationId, topicUuid, seq_type_enum.Chat, msg.Uuid, 0, results)
	return results, nil
}

// FanoutControl 向指定信箱集合追加控制条目
// 状态变化永远追加记录，绝不改写既有条目的 seq_type
func (d *deliveryService) FanoutControl(seqType int8, referMessageId int64, conversationId string, receivers []request.MailboxRef, extra string) ([]respond.ReceiverSeqRespond, error) {
	receivers = dedupeMailboxes(receivers)
	if len(receivers) == 0 {
		return []respond.ReceiverSeqRespond{}, nil
	}
	if !seq_type_enum.IsControl(seqType) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "非控制条目类型 seq_type=%d", seqType)
	}

	ctx := context.Background()
	entries := make([]*model.SeqEntry, 0, len(receivers))
	results := make([]respond.ReceiverSeqRespond, 0, len(receivers))
	for _, ref := range receivers {
		seqId, err := d.alloc.Malloc(ctx, ref.ObjectType, ref.ObjectId, 1)
		if err != nil {
			zap.L().Error("分配序号失败", zap.String("mailbox", ref.ObjectType+":"+ref.ObjectId), zap.Error(err))
			return nil, err
		}
		entries = append(entries, &model.SeqEntry{
			SeqId:          seqId,
			ObjectType:     ref.ObjectType,
			ObjectId:       ref.ObjectId,
			ConversationId: conversationId,
			SeqType:        seqType,
			ReferMessageId: referMessageId,
			Extra:          extra,
			Status:         seq_status_enum.Normal,
		})
		results = append(results, respond.ReceiverSeqRespond{
			ObjectType: ref.ObjectType,
			ObjectId:   ref.ObjectId,
			SeqId:      seqId,
		})
	}

	if err := appendEntries(d.repos.Seq, entries); err != nil {
		return nil, err
	}

	d.afterFanout(conversationId, "", seqType, 0, referMessageId, results)
	return results, nil
}

// afterFanout 落盘后的旁路动作：发布扇出事件、失效首屏缓存
// 两者都只影响实时性，失败仅记日志
func (d *deliveryService) afterFanout(conversationId, topicUuid string, seqType int8, magicMessageId, referMessageId int64, receivers []respond.ReceiverSeqRespond) {
	if producer := mq.GetProducer(); producer != nil {
		event := &mq.FanoutEvent{
			ConversationId: conversationId,
			TopicUuid:      topicUuid,
			SeqType:        seqType,
			MagicMessageId: magicMessageId,
			ReferMessageId: referMessageId,
			Receivers:      make([]mq.EventReceiver, 0, len(receivers)),
		}
		for _, r := range receivers {
			event.Receivers = append(event.Receivers, mq.EventReceiver{
				ObjectType: r.ObjectType,
				ObjectId:   r.ObjectId,
				SeqId:      r.SeqId,
			})
		}
		if err := producer.Publish(event); err != nil {
			zap.L().Error("发布扇出事件失败", zap.Error(err))
		}
	}

	if d.cache != nil {
		for _, r := range receivers {
			pattern := "grouped_latest_" + r.ObjectType + ":" + r.ObjectId + "*"
			d.cache.SubmitTask(func() {
				if err := d.cache.DeleteByPattern(context.Background(), pattern); err != nil {
					zap.L().Error("失效首屏缓存失败", zap.Error(err))
				}
			})
		}
	}
}

// ==================== 视图构建 ====================

// buildViews 将序列条目连同消息内容组装为投递视图
// 一次批量查询取回全部内容；内容缺失时条目照常返回、Message 为
// null，绝不因内容缺失丢条目
func (d *deliveryService) buildViews(entries []model.SeqEntry) ([]respond.DeliveryViewRespond, error) {
	magicIds := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.MagicMessageId > 0 {
			magicIds = append(magicIds, e.MagicMessageId)
		}
	}
	messages, err := d.repos.Message.FindByUuids(magicIds, nil)
	if err != nil {
		return nil, err
	}
	messageByUuid := make(map[int64]model.Message, len(messages))
	for _, m := range messages {
		messageByUuid[m.Uuid] = m
	}

	views := make([]respond.DeliveryViewRespond, 0, len(entries))
	for _, e := range entries {
		view := respond.DeliveryViewRespond{
			SeqId:          e.SeqId,
			ObjectType:     e.ObjectType,
			ObjectId:       e.ObjectId,
			ConversationId: e.ConversationId,
			TopicUuid:      e.TopicUuid,
			SeqType:        e.SeqType,
			ReferMessageId: e.ReferMessageId,
			MagicMessageId: e.MagicMessageId,
			AppMessageId:   e.AppMessageId,
			Status:         e.Status,
			Extra:          e.Extra,
			CreatedAt:      e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if m, ok := messageByUuid[e.MagicMessageId]; ok && e.MagicMessageId > 0 {
			view.Message = messageToRespond(&m)
		}
		views = append(views, view)
	}
	return views, nil
}

// messageToRespond 消息模型转响应，墓碑行标记 Revoked
func messageToRespond(m *model.Message) *respond.MessageRespond {
	return &respond.MessageRespond{
		MagicMessageId:   m.Uuid,
		ConversationId:   m.ConversationId,
		SenderType:       m.SenderType,
		SenderId:         m.SenderId,
		Type:             m.Type,
		Content:          m.Content,
		CurrentVersionId: m.CurrentVersionId,
		AppMessageId:     m.AppMessageId,
		Revoked:          m.DeletedAt.Valid,
		CreatedAt:        m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// toPullRespond 组装分页响应
// NextCursor 取本页最后一条的 seq_id；hasMore 由多取一条探测得出
func (d *deliveryService) toPullRespond(entries []model.SeqEntry, limit int) (*respond.PullRespond, error) {
	hasMore := false
	if len(entries) > limit {
		hasMore = true
		entries = entries[:limit]
	}
	views, err := d.buildViews(entries)
	if err != nil {
		return nil, err
	}
	var nextCursor int64
	if len(entries) > 0 {
		nextCursor = entries[len(entries)-1].SeqId
	}
	return &respond.PullRespond{
		Entries:    views,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// ==================== 拉取 ====================

// PullAfter 升序补拉
func (d *deliveryService) PullAfter(req request.PullRequest) (*respond.PullRespond, error) {
	limit := clampLimit(req.Limit)
	entries, err := d.repos.Seq.PullAfter(req.ObjectType, req.ObjectId, req.Cursor, limit+1, false)
	if err != nil {
		zap.L().Error("升序拉取失败", zap.Error(err))
		return nil, err
	}
	return d.toPullRespond(entries, limit)
}

// PullRecent 降序回看
func (d *deliveryService) PullRecent(req request.PullRequest) (*respond.PullRespond, error) {
	limit := clampLimit(req.Limit)
	entries, err := d.repos.Seq.PullAfter(req.ObjectType, req.ObjectId, req.Cursor, limit+1, true)
	if err != nil {
		zap.L().Error("降序拉取失败", zap.Error(err))
		return nil, err
	}
	return d.toPullRespond(entries, limit)
}

// PullByAppMessageId 同一客户端幂等键范围内的续拉
func (d *deliveryService) PullByAppMessageId(req request.PullByAppMessageRequest) (*respond.PullRespond, error) {
	limit := clampLimit(req.Limit)
	entries, err := d.repos.Seq.PullByAppMessageId(req.ObjectType, req.ObjectId, req.AppMessageId, req.Cursor, limit+1)
	if err != nil {
		zap.L().Error("按幂等键拉取失败", zap.Error(err))
		return nil, err
	}
	return d.toPullRespond(entries, limit)
}

// PullConversationWindow 会话回看窗口
func (d *deliveryService) PullConversationWindow(req request.ConversationWindowRequest) (*respond.PullRespond, error) {
	limit := clampLimit(req.Limit)
	entries, err := d.repos.Seq.PullConversationWindow(
		req.ObjectType, req.ObjectId, req.ConversationIds,
		req.Cursor, req.StartMs, req.EndMs, req.Desc, limit+1)
	if err != nil {
		zap.L().Error("会话窗口拉取失败", zap.Error(err))
		return nil, err
	}
	return d.toPullRespond(entries, limit)
}

// PullGroupedLatest 各会话最新 N 条
// 未指定会话时覆盖信箱内全部会话
func (d *deliveryService) PullGroupedLatest(req request.GroupedLatestRequest) (*respond.PullRespond, error) {
	perConv := req.LimitPerConversation
	if perConv <= 0 {
		perConv = 1
	}
	if max := clampLimit(constants.MAX_PAGE_SIZE); perConv > max {
		perConv = max
	}

	conversationIds := req.ConversationIds
	if len(conversationIds) == 0 {
		var err error
		conversationIds, err = d.repos.Seq.FindConversationIds(req.ObjectType, req.ObjectId)
		if err != nil {
			zap.L().Error("查询信箱会话失败", zap.Error(err))
			return nil, err
		}
		if len(conversationIds) == 0 {
			return &respond.PullRespond{Entries: []respond.DeliveryViewRespond{}}, nil
		}
	}

	entries, err := d.repos.Seq.PullGroupedLatest(req.ObjectType, req.ObjectId, conversationIds, perConv)
	if err != nil {
		zap.L().Error("分组最新拉取失败", zap.Error(err))
		return nil, err
	}
	views, err := d.buildViews(entries)
	if err != nil {
		return nil, err
	}
	return &respond.PullRespond{Entries: views}, nil
}

// ViewsBySeqIds 按序号列表回查并组装视图，话题拉取复用
// 结果保持入参 seqIds 的顺序（话题翻页可能是降序）
func (d *deliveryService) ViewsBySeqIds(objectType, objectId string, seqIds []int64) ([]respond.DeliveryViewRespond, error) {
	if len(seqIds) == 0 {
		return []respond.DeliveryViewRespond{}, nil
	}
	entries, err := d.repos.Seq.FindBySeqIds(objectType, objectId, seqIds)
	if err != nil {
		zap.L().Error("按序号回查失败", zap.Error(err))
		return nil, err
	}
	views, err := d.buildViews(entries)
	if err != nil {
		return nil, err
	}
	viewBySeq := make(map[int64]respond.DeliveryViewRespond, len(views))
	for _, v := range views {
		viewBySeq[v.SeqId] = v
	}
	ordered := make([]respond.DeliveryViewRespond, 0, len(views))
	for _, seqId := range seqIds {
		if v, ok := viewBySeq[seqId]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

// ==================== 状态与记账 ====================

// ResolveStatusChanges 解析状态变更流
// 合并控制条目与原始条目，同一逻辑消息以 seq_id 最大者为准
func (d *deliveryService) ResolveStatusChanges(req request.StatusChangeRequest) (*respond.StatusChangeRespond, error) {
	entries, err := d.repos.Seq.FindStatusChangeStream(req.ObjectType, req.ObjectId, req.ReferMessageIds)
	if err != nil {
		zap.L().Error("解析状态变更流失败", zap.Error(err))
		return nil, err
	}
	views, err := d.buildViews(entries)
	if err != nil {
		return nil, err
	}
	return &respond.StatusChangeRespond{Entries: views}, nil
}

// BatchUpdateStatus 批量原地更新条目状态（已读/已送达记账）
func (d *deliveryService) BatchUpdateStatus(req request.UpdateStatusRequest) (*respond.AffectedRespond, error) {
	if !seq_status_enum.IsValid(req.Status) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "非法状态值 status=%d", req.Status)
	}
	affected, err := d.repos.Seq.BatchUpdateStatus(req.ObjectType, req.ObjectId, req.SeqIds, req.Status)
	if err != nil {
		zap.L().Error("批量更新状态失败", zap.Error(err))
		return nil, err
	}
	return &respond.AffectedRespond{Affected: affected}, nil
}

// UpdateExtra 原地更新条目旁路数据
func (d *deliveryService) UpdateExtra(req request.UpdateExtraRequest) error {
	updated, err := d.repos.Seq.UpdateExtra(req.ObjectType, req.ObjectId, req.SeqId, req.Extra)
	if err != nil {
		zap.L().Error("更新条目 extra 失败", zap.Error(err))
		return err
	}
	if !updated {
		return errorx.Newf(errorx.CodeNotFound, "条目不存在 seq_id=%d", req.SeqId)
	}
	return nil
}

// DeleteEntries 管理性清理条目
func (d *deliveryService) DeleteEntries(req request.DeleteEntriesRequest) (*respond.AffectedRespond, error) {
	affected, err := d.repos.Seq.DeleteByIds(req.ObjectType, req.ObjectId, req.SeqIds)
	if err != nil {
		zap.L().Error("清理条目失败", zap.Error(err))
		return nil, err
	}
	return &respond.AffectedRespond{Affected: affected}, nil
}
