package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	myconfig "seqchat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var ctx = context.Background()

// kafkaService kafka 版扇出管道，多实例部署时使用
// 按 ConversationId 做分区哈希，同会话事件保持分区内有序
type kafkaService struct {
	FanoutWriter *kafka.Writer
	FanoutReader *kafka.Reader
	KafkaConn    *kafka.Conn
}

var KafkaService = new(kafkaService)

// KafkaInit 初始化 kafka 读写两端
func (k *kafkaService) KafkaInit() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig
	k.FanoutWriter = &kafka.Writer{
		Addr:                   kafka.TCP(kafkaConfig.HostPort),
		Topic:                  kafkaConfig.FanoutTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaConfig.Timeout * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	k.FanoutReader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{kafkaConfig.HostPort},
		Topic:          kafkaConfig.FanoutTopic,
		CommitInterval: kafkaConfig.Timeout * time.Second,
		GroupID:        "seq_fanout",
		StartOffset:    kafka.LastOffset,
	})
}

// KafkaClose 关闭读写两端
func (k *kafkaService) KafkaClose() {
	if err := k.FanoutWriter.Close(); err != nil {
		zap.L().Error(err.Error())
	}
	if err := k.FanoutReader.Close(); err != nil {
		zap.L().Error(err.Error())
	}
}

// CreateTopic 创建扇出 topic，已存在时 kafka 返回错误仅记日志
func (k *kafkaService) CreateTopic() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig

	var err error
	k.KafkaConn, err = kafka.Dial("tcp", kafkaConfig.HostPort)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             kafkaConfig.FanoutTopic,
			NumPartitions:     kafkaConfig.Partition,
			ReplicationFactor: 1,
		},
	}
	if err = k.KafkaConn.CreateTopics(topicConfigs...); err != nil {
		zap.L().Error(err.Error())
	}
}

// Publish 实现 Producer 接口
func (k *kafkaService) Publish(event *FanoutEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.FanoutWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ConversationId),
		Value: value,
	})
}

// Close 实现 Producer 接口
func (k *kafkaService) Close() error {
	k.KafkaClose()
	return nil
}

// StartConsume 循环消费扇出事件并交给注入的 EventHandler
// 单条事件处理失败只记日志，不中断消费
func (k *kafkaService) StartConsume() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("kafka consumer panic: %v", r))
		}
	}()
	for {
		kafkaMessage, err := k.FanoutReader.ReadMessage(ctx)
		if err != nil {
			zap.L().Error(err.Error())
			continue
		}
		var event FanoutEvent
		if err := json.Unmarshal(kafkaMessage.Value, &event); err != nil {
			zap.L().Error(err.Error())
			continue
		}
		handler := GetEventHandler()
		if handler == nil {
			continue
		}
		if err := handler.HandleFanoutEvent(&event); err != nil {
			zap.L().Error(err.Error())
		}
	}
}
