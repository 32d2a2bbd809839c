// Package websocket 在线提醒网关
// 连接按信箱 (object_type, object_id) 注册；服务端只下推轻量
// nudge，不推送消息内容，客户端收到后按游标拉取补齐。
// 连接断开或提醒丢失不影响正确性，拉取永远是权威路径
package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"seqchat_server/pkg/constants"
)

// Nudge 下推给客户端的提醒载荷
type Nudge struct {
	ConversationId string `json:"conversation_id"`
	TopicUuid      string `json:"topic_uuid"`
	SeqType        int8   `json:"seq_type"`
	SeqId          int64  `json:"seq_id"`
	MagicMessageId int64  `json:"magic_message_id"`
	ReferMessageId int64  `json:"refer_message_id"`
}

// Client 一条在线连接，归属一个信箱
// 下推通道的关闭由 Client 自己持有：TrySend 与 Close 互斥，
// 被顶掉的连接不会出现向已关闭通道写入的窗口
type Client struct {
	Conn       *websocket.Conn
	ObjectType string
	ObjectId   string

	mutex  sync.Mutex
	closed bool
	send   chan []byte
}

func newClient(conn *websocket.Conn, objectType, objectId string) *Client {
	return &Client{
		Conn:       conn,
		ObjectType: objectType,
		ObjectId:   objectId,
		send:       make(chan []byte, constants.CHANNEL_SIZE),
	}
}

// MailboxKey 信箱键，与注册表的 key 一致
func (c *Client) MailboxKey() string {
	return c.ObjectType + ":" + c.ObjectId
}

// TrySend 尝试把一条下推载荷入队
// 连接已关闭或写缓冲满时返回 false，提醒丢弃由客户端拉取兜底
func (c *Client) TrySend(payload []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close 关闭下推通道与底层连接，重复调用安全
func (c *Client) Close() {
	c.mutex.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mutex.Unlock()
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// readPump 读循环只用于感知断连，入站数据全部丢弃
// 协议是拉取驱动的，客户端不通过 websocket 发业务指令
func (c *Client) readPump() {
	defer GatewayServer.Unregister(c)
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			zap.L().Info("ws connection closed",
				zap.String("mailbox", c.MailboxKey()), zap.Error(err))
			return
		}
	}
}

// writePump 把下推通道的提醒写给客户端，通道关闭即退出
func (c *Client) writePump() {
	for payload := range c.send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			zap.L().Error("ws write error",
				zap.String("mailbox", c.MailboxKey()), zap.Error(err))
			return
		}
	}
}

// NewClientInit 升级 HTTP 连接并注册信箱
// 同一信箱已有连接时旧连接被顶掉
func NewClientInit(c *gin.Context, objectType, objectId string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade error", zap.Error(err))
		return
	}
	client := newClient(conn, objectType, objectId)
	GatewayServer.Register(client)
	go client.readPump()
	go client.writePump()
	zap.L().Info("ws连接成功", zap.String("mailbox", client.MailboxKey()))
}

// ClientLogout 主动登出，关闭并注销连接
func ClientLogout(objectType, objectId string) {
	client := GatewayServer.GetClient(objectType + ":" + objectId)
	if client == nil {
		return
	}
	GatewayServer.Unregister(client)
}
