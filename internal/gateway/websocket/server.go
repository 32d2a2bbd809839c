package websocket

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"seqchat_server/internal/infrastructure/mq"
)

// Server 在线连接注册表，key 为信箱键 "object_type:object_id"
// 同时实现 mq.EventHandler：扇出事件到达时向在线信箱下推 nudge
type Server struct {
	mutex   sync.Mutex
	clients map[string]*Client
}

// GatewayServer 全局网关实例
var GatewayServer = &Server{
	clients: make(map[string]*Client),
}

// Register 注册连接，同一信箱的旧连接被顶掉
// 通道关闭交给 Client.Close，与并发中的 TrySend 互斥
func (s *Server) Register(client *Client) {
	key := client.MailboxKey()
	s.mutex.Lock()
	old, ok := s.clients[key]
	s.clients[key] = client
	s.mutex.Unlock()
	if ok && old != client {
		old.Close()
		zap.L().Info("ws kick old connection", zap.String("mailbox", key))
	}
}

// Unregister 注销并关闭连接；已被顶掉的连接不动注册表
func (s *Server) Unregister(client *Client) {
	key := client.MailboxKey()
	s.mutex.Lock()
	if current, ok := s.clients[key]; ok && current == client {
		delete(s.clients, key)
	}
	s.mutex.Unlock()
	client.Close()
}

// GetClient 按信箱键取在线连接，不在线返回 nil
func (s *Server) GetClient(mailboxKey string) *Client {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.clients[mailboxKey]
}

// OnlineCount 在线连接数
func (s *Server) OnlineCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.clients)
}

// HandleFanoutEvent 实现 mq.EventHandler
// 向事件中每个在线的接收信箱下推 nudge；离线信箱跳过，
// 连接写缓冲满时丢弃提醒，由客户端拉取兜底
func (s *Server) HandleFanoutEvent(event *mq.FanoutEvent) error {
	for _, receiver := range event.Receivers {
		key := receiver.ObjectType + ":" + receiver.ObjectId
		client := s.GetClient(key)
		if client == nil {
			continue
		}
		payload, err := json.Marshal(Nudge{
			ConversationId: event.ConversationId,
			TopicUuid:      event.TopicUuid,
			SeqType:        event.SeqType,
			SeqId:          receiver.SeqId,
			MagicMessageId: event.MagicMessageId,
			ReferMessageId: event.ReferMessageId,
		})
		if err != nil {
			zap.L().Error("marshal nudge error", zap.Error(err))
			continue
		}
		if !client.TrySend(payload) {
			zap.L().Warn("ws nudge dropped", zap.String("mailbox", key))
		}
	}
	return nil
}
