// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/dto/respond"
)

// MessageService 消息内容业务接口
// 处理消息的创建、编辑、撤回与版本查询
type MessageService interface {
	// SendMessage 发送消息：建内容、逐信箱分配序号扇出、话题挂载
	// 命中客户端幂等键时不重复建消息
	SendMessage(req request.SendMessageRequest) (*respond.SendMessageRespond, error)
	// EditMessage 编辑消息：追加版本并切换当前版本，原内容不被修改
	// 同时向每个接收信箱追加编辑控制条目
	EditMessage(req request.EditMessageRequest) (*respond.MessageRespond, error)
	// RevokeMessage 撤回消息：内容打墓碑并扇出撤回控制条目
	RevokeMessage(req request.RevokeMessageRequest) error
	// GetMessagesByIds 批量取消息内容，返回当前生效版本
	GetMessagesByIds(req request.GetMessagesRequest) ([]respond.MessageRespond, error)
	// GetVersionHistory 查询消息的全部版本
	GetVersionHistory(magicMessageId int64) ([]respond.MessageVersionRespond, error)
}

// DeliveryService 序列投递业务接口
// 处理信箱日志的各类拉取与原地记账
type DeliveryService interface {
	// PullAfter 升序补拉：seq_id 严格大于 cursor 的条目
	PullAfter(req request.PullRequest) (*respond.PullRespond, error)
	// PullRecent 降序回看：从最新（或 cursor 之前）往回翻页
	PullRecent(req request.PullRequest) (*respond.PullRespond, error)
	// PullByAppMessageId 同一客户端幂等键范围内的续拉
	PullByAppMessageId(req request.PullByAppMessageRequest) (*respond.PullRespond, error)
	// PullConversationWindow 一个或多个会话的回看窗口
	PullConversationWindow(req request.ConversationWindowRequest) (*respond.PullRespond, error)
	// PullGroupedLatest 各会话最新 N 条（会话列表首屏）
	PullGroupedLatest(req request.GroupedLatestRequest) (*respond.PullRespond, error)
	// ResolveStatusChanges 解析状态变更流，每消息取 seq_id 最大者
	ResolveStatusChanges(req request.StatusChangeRequest) (*respond.StatusChangeRespond, error)
	// BatchUpdateStatus 批量原地更新条目状态
	BatchUpdateStatus(req request.UpdateStatusRequest) (*respond.AffectedRespond, error)
	// UpdateExtra 原地更新条目旁路数据
	UpdateExtra(req request.UpdateExtraRequest) error
	// DeleteEntries 管理性清理条目
	DeleteEntries(req request.DeleteEntriesRequest) (*respond.AffectedRespond, error)
}

// TopicService 话题业务接口
// 处理会话内话题的增删改查与话题内消息拉取
type TopicService interface {
	// CreateTopic 创建话题
	CreateTopic(req request.CreateTopicRequest) (*respond.TopicRespond, error)
	// UpdateTopic 更新话题名称/描述
	UpdateTopic(req request.UpdateTopicRequest) (*respond.TopicRespond, error)
	// DeleteTopic 删除话题；已有消息关联不级联清理
	DeleteTopic(req request.DeleteTopicRequest) error
	// GetTopic 查询话题
	GetTopic(conversationId, topicUuid string) (*respond.TopicRespond, error)
	// GetTopicByUuid 仅凭话题标识查询（调用方不知道所属会话时使用）
	GetTopicByUuid(topicUuid string) (*respond.TopicRespond, error)
	// AttachMessage 将已投递条目补挂到话题
	AttachMessage(req request.AttachTopicMessageRequest) error
	// ListMessages 话题内游标拉取
	ListMessages(req request.TopicMessageListRequest) (*respond.PullRespond, error)
}
