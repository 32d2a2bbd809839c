// Package mq 投递事件管道
// 序列条目落盘后，写路径向管道发布扇出事件，消费端将在线提醒
// 推给相关信箱的 websocket 连接。管道有 channel（单机）与 kafka
// （多实例）两种实现，按配置 messageMode 选择
package mq

// EventReceiver 扇出事件中的单个接收信箱及其分得的序号
type EventReceiver struct {
	ObjectType string `json:"object_type"`
	ObjectId   string `json:"object_id"`
	SeqId      int64  `json:"seq_id"`
}

// FanoutEvent 一次逻辑投递的扇出事件
// 事件只做在线提醒（nudge），不携带消息内容；客户端收到后
// 按游标拉取补齐，丢事件只影响实时性，不影响正确性
type FanoutEvent struct {
	ConversationId string `json:"conversation_id"`
	TopicUuid      string `json:"topic_uuid"`
	// SeqType 条目类型，参见 pkg/enum/seq_type_enum
	SeqType        int8            `json:"seq_type"`
	MagicMessageId int64           `json:"magic_message_id"`
	ReferMessageId int64           `json:"refer_message_id"`
	Receivers      []EventReceiver `json:"receivers"`
}

// Producer 扇出事件生产者
type Producer interface {
	// Publish 发布扇出事件，失败只记日志不回滚写路径
	Publish(event *FanoutEvent) error
	// Close 关闭生产者
	Close() error
}

// EventHandler 扇出事件消费接口
// 用于解耦 MQ 层和 Gateway 层的依赖关系：
// MQ 层只需知道"有个东西能处理事件"，不需要知道具体实现
type EventHandler interface {
	HandleFanoutEvent(event *FanoutEvent) error
}

var (
	producer     Producer
	eventHandler EventHandler
)

// SetProducer 注入 Producer 实现
func SetProducer(p Producer) {
	producer = p
}

// GetProducer 获取 Producer 实现，未注入时返回 nil
func GetProducer() Producer {
	return producer
}

// SetEventHandler 注入 EventHandler 实现
func SetEventHandler(h EventHandler) {
	eventHandler = h
}

// GetEventHandler 获取 EventHandler 实现
func GetEventHandler() EventHandler {
	return eventHandler
}
