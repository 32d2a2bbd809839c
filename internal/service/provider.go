// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"seqchat_server/internal/dao/mysql/repository"
	myredis "seqchat_server/internal/dao/redis"
	"seqchat_server/internal/service/delivery"
	"seqchat_server/internal/service/message"
	"seqchat_server/internal/service/topic"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	Message  MessageService  // 消息内容 Service
	Delivery DeliveryService // 序列投递 Service
	Topic    TopicService    // 话题 Service
}

// NewServices 创建并注入所有 Service 实例
// 依赖注入流程：
//  1. 先建 delivery，它同时实现消息层的 Fanout 与话题层的 Viewer
//  2. message / topic 以接口形式持有 delivery，避免循环依赖
//  3. 返回 Services 聚合
//
// repos: Repository 层聚合实例
// alloc: 序号段分配器
// cache: 异步缓存服务
func NewServices(repos *repository.Repositories, alloc delivery.SeqAllocator, cache myredis.AsyncCacheService) *Services {
	deliverySvc := delivery.NewDeliveryService(repos, alloc, cache)
	messageSvc := message.NewMessageService(repos, deliverySvc, cache)
	topicSvc := topic.NewTopicService(repos, deliverySvc, cache)

	return &Services{
		Message:  messageSvc,
		Delivery: deliverySvc,
		Topic:    topicSvc,
	}
}

// Svc 全局 Services 实例
// Handler 层通过 service.Svc.Message.SendMessage() 等方式调用
var Svc *Services

// InitServices 初始化全局 Services 实例
// 应在 main.go 中调用，在 Repository 与分配器初始化之后
func InitServices(repos *repository.Repositories, alloc delivery.SeqAllocator, cache myredis.AsyncCacheService) {
	Svc = NewServices(repos, alloc, cache)
}
