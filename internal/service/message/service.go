// Package message 实现消息内容业务逻辑
// 内容不可变：编辑追加版本，撤回打墓碑，历史永远可审计
package message

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"seqchat_server/internal/dao/mysql/repository"
	myredis "seqchat_server/internal/dao/redis"
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/dto/respond"
	"seqchat_server/internal/model"
	"seqchat_server/pkg/constants"
	"seqchat_server/pkg/enum/message_type_enum"
	"seqchat_server/pkg/enum/seq_type_enum"
	"seqchat_server/pkg/errorx"
	"seqchat_server/pkg/util/snowflake"
)

// Fanout 投递扇出依赖
// 由 delivery Service 实现，消息层不直接触碰序列日志
type Fanout interface {
	// FanoutChat 为一次逻辑发送向每个接收信箱追加 chat 条目
	FanoutChat(msg *model.Message, topicUuid string, receivers []request.MailboxRef, extra string) ([]respond.ReceiverSeqRespond, error)
	// FanoutControl 向指定信箱集合追加控制条目
	FanoutControl(seqType int8, referMessageId int64, conversationId string, receivers []request.MailboxRef, extra string) ([]respond.ReceiverSeqRespond, error)
}

// messageService 消息业务逻辑实现
type messageService struct {
	repos  *repository.Repositories
	fanout Fanout
	cache  myredis.AsyncCacheService
}

// NewMessageService 构造函数
func NewMessageService(repos *repository.Repositories, fanout Fanout, cache myredis.AsyncCacheService) *messageService {
	return &messageService{repos: repos, fanout: fanout, cache: cache}
}

func messageCacheKey(magicMessageId int64) string {
	return "message_" + strconv.FormatInt(magicMessageId, 10)
}

// SendMessage 发送消息
// 建内容与扇出分两步：内容建成后扇出失败时，客户端携带同一
// app_message_id 重试会命中幂等键，再通过按幂等键续拉补齐条目
func (m *messageService) SendMessage(req request.SendMessageRequest) (*respond.SendMessageRespond, error) {
	if !message_type_enum.IsValid(req.Type) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "非法消息类型 type=%d", req.Type)
	}

	// 话题归属在建条目时固定，发送前校验话题确实属于该会话
	if req.TopicUuid != "" {
		topic, err := m.repos.Topic.FindByConvAndUuid(req.ConversationId, req.TopicUuid)
		if err != nil {
			return nil, err
		}
		if topic == nil {
			return nil, errorx.Newf(errorx.CodeNotFound, "话题不存在 topic_uuid=%s", req.TopicUuid)
		}
	}

	// 幂等探测：命中客户端幂等键时不重复建消息、不重复扇出
	// 先走覆盖索引探测，未命中（绝大多数发送）不回表取整行
	if req.AppMessageId != "" {
		exists, err := m.repos.Message.ExistsByAppMessageId(req.AppMessageId, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			existing, err := m.repos.Message.FindByAppMessageId(req.AppMessageId)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, errorx.Newf(errorx.CodeServerBusy, "幂等键探测不一致 app_message_id=%s", req.AppMessageId)
			}
			return &respond.SendMessageRespond{
				MagicMessageId: existing.Uuid,
				AppMessageId:   existing.AppMessageId,
				Duplicate:      true,
				Receivers:      []respond.ReceiverSeqRespond{},
			}, nil
		}
	}

	magicMessageId := snowflake.GenerateID()
	versionId := snowflake.GenerateID()
	msg := &model.Message{
		Uuid:             magicMessageId,
		ConversationId:   req.ConversationId,
		SenderType:       req.SenderType,
		SenderId:         req.SenderId,
		Type:             req.Type,
		Content:          req.Content,
		CurrentVersionId: versionId,
		AppMessageId:     req.AppMessageId,
	}
	firstVersion := &model.MessageVersion{
		VersionId:   versionId,
		MessageUuid: magicMessageId,
		Content:     req.Content,
	}
	if err := m.repos.Message.Create(msg, firstVersion); err != nil {
		zap.L().Error("创建消息失败", zap.Error(err))
		return nil, err
	}

	receivers, err := m.fanout.FanoutChat(msg, req.TopicUuid, req.ReceiveList, req.Extra)
	if err != nil {
		zap.L().Error("消息扇出失败", zap.Int64("magic_message_id", magicMessageId), zap.Error(err))
		return nil, err
	}

	return &respond.SendMessageRespond{
		MagicMessageId: magicMessageId,
		AppMessageId:   req.AppMessageId,
		Duplicate:      false,
		Receivers:      receivers,
	}, nil
}

// findOne 取单条消息（含墓碑），不存在时返回 CodeNotFound
func (m *messageService) findOne(magicMessageId int64) (*model.Message, error) {
	messages, err := m.repos.Message.FindByUuids([]int64{magicMessageId}, nil)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errorx.Newf(errorx.CodeNotFound, "消息不存在 magic_message_id=%d", magicMessageId)
	}
	return &messages[0], nil
}

// EditMessage 编辑消息
// 追加版本并切换当前版本指针（last-writer-wins），随后向每个
// 接收过该消息的信箱追加一条编辑控制条目；消息被重复投递到
// 同一信箱时也只通知一次
func (m *messageService) EditMessage(req request.EditMessageRequest) (*respond.MessageRespond, error) {
	msg, err := m.findOne(req.MagicMessageId)
	if err != nil {
		return nil, err
	}
	if msg.DeletedAt.Valid {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "消息已撤回，不能编辑 magic_message_id=%d", req.MagicMessageId)
	}

	versionId := snowflake.GenerateID()
	version := &model.MessageVersion{
		VersionId:   versionId,
		MessageUuid: req.MagicMessageId,
		Content:     req.Content,
	}
	if err := m.repos.Message.CreateVersion(version); err != nil {
		zap.L().Error("追加消息版本失败", zap.Error(err))
		return nil, err
	}

	m.invalidateCache(req.MagicMessageId)

	// 版本已落盘，但控制条目是状态合并的依据，追加失败必须向上返回；
	// 客户端携同一内容重试编辑是安全的（last-writer-wins）
	if err := m.notifyReceivers(seq_type_enum.Edited, msg, map[string]int64{"version_id": versionId}); err != nil {
		return nil, err
	}

	msg.Content = req.Content
	msg.CurrentVersionId = versionId
	return messageToRespond(msg), nil
}

// RevokeMessage 撤回消息
// 内容打墓碑，扇出撤回控制条目；重复撤回按幂等处理
func (m *messageService) RevokeMessage(req request.RevokeMessageRequest) error {
	msg, err := m.findOne(req.MagicMessageId)
	if err != nil {
		return err
	}
	if msg.DeletedAt.Valid {
		return nil
	}

	if err := m.repos.Message.SoftDeleteByUuids([]int64{req.MagicMessageId}); err != nil {
		zap.L().Error("撤回消息失败", zap.Error(err))
		return err
	}

	m.invalidateCache(req.MagicMessageId)
	// 墓碑已落盘，控制条目失败同样向上返回，提示调用方撤回未完全生效
	return m.notifyReceivers(seq_type_enum.Revoked, msg, nil)
}

// notifyReceivers 向每个接收过该消息的信箱追加控制条目
// 接收方集合来自序列日志而非原始 receive_list：以真实投递为准
// 控制条目是状态变更流的落盘记录，任何一步失败都向上返回
func (m *messageService) notifyReceivers(seqType int8, msg *model.Message, extraFields map[string]int64) error {
	entries, err := m.repos.Seq.FindMinSeqByMagicId(msg.Uuid)
	if err != nil {
		zap.L().Error("查询消息投递信箱失败", zap.Int64("magic_message_id", msg.Uuid), zap.Error(err))
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	receivers := make([]request.MailboxRef, 0, len(entries))
	for _, e := range entries {
		receivers = append(receivers, request.MailboxRef{ObjectType: e.ObjectType, ObjectId: e.ObjectId})
	}

	extra := ""
	if len(extraFields) > 0 {
		if raw, err := json.Marshal(extraFields); err == nil {
			extra = string(raw)
		}
	}
	if _, err := m.fanout.FanoutControl(seqType, msg.Uuid, msg.ConversationId, receivers, extra); err != nil {
		zap.L().Error("控制条目扇出失败", zap.Int64("magic_message_id", msg.Uuid), zap.Error(err))
		return err
	}
	return nil
}

// invalidateCache 异步失效单条消息缓存
func (m *messageService) invalidateCache(magicMessageId int64) {
	if m.cache == nil {
		return
	}
	key := messageCacheKey(magicMessageId)
	m.cache.SubmitTask(func() {
		if err := m.cache.Delete(context.Background(), key); err != nil {
			zap.L().Error("失效消息缓存失败", zap.Error(err))
		}
	})
}

// GetMessagesByIds 批量取消息内容
// 单条查询走缓存，批量查询直查数据库；返回当前生效版本，
// 被撤回消息以墓碑形式返回
func (m *messageService) GetMessagesByIds(req request.GetMessagesRequest) ([]respond.MessageRespond, error) {
	if len(req.MessageIds) == 1 && req.Type == nil && m.cache != nil {
		cacheKey := messageCacheKey(req.MessageIds[0])
		if cached, err := m.cache.Get(context.Background(), cacheKey); err == nil && cached != "" {
			var rsp respond.MessageRespond
			if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
				return []respond.MessageRespond{rsp}, nil
			}
			zap.L().Error("解析消息缓存失败", zap.String("key", cacheKey))
		}
	}

	messages, err := m.repos.Message.FindByUuids(req.MessageIds, req.Type)
	if err != nil {
		zap.L().Error("批量查询消息失败", zap.Error(err))
		return nil, err
	}

	rspList := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		rspList = append(rspList, *messageToRespond(&messages[i]))
	}

	if len(req.MessageIds) == 1 && req.Type == nil && m.cache != nil && len(rspList) == 1 {
		cacheKey := messageCacheKey(req.MessageIds[0])
		rsp := rspList[0]
		m.cache.SubmitTask(func() {
			raw, err := json.Marshal(rsp)
			if err != nil {
				return
			}
			ttl := time.Duration(constants.REDIS_TIMEOUT) * time.Minute
			if err := m.cache.Set(context.Background(), cacheKey, string(raw), ttl); err != nil {
				zap.L().Error("写消息缓存失败", zap.Error(err))
			}
		})
	}
	return rspList, nil
}

// GetVersionHistory 查询消息的全部版本，按版本先后排列
func (m *messageService) GetVersionHistory(magicMessageId int64) ([]respond.MessageVersionRespond, error) {
	msg, err := m.findOne(magicMessageId)
	if err != nil {
		return nil, err
	}
	versions, err := m.repos.Message.FindVersions(magicMessageId)
	if err != nil {
		zap.L().Error("查询消息版本失败", zap.Error(err))
		return nil, err
	}

	rspList := make([]respond.MessageVersionRespond, 0, len(versions))
	for _, v := range versions {
		rspList = append(rspList, respond.MessageVersionRespond{
			VersionId:      v.VersionId,
			MagicMessageId: v.MessageUuid,
			Content:        v.Content,
			Current:        v.VersionId == msg.CurrentVersionId,
			CreatedAt:      v.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return rspList, nil
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
