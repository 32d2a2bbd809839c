package mq

import (
	"errors"
	"fmt"

	"seqchat_server/pkg/constants"

	"go.uber.org/zap"
)

// channelBroker 进程内 channel 版扇出管道，单机部署时使用
// 缓冲打满时丢弃事件：提醒丢失不影响正确性，客户端靠拉取兜底
type channelBroker struct {
	events chan *FanoutEvent
	done   chan struct{}
}

var ChannelBroker = &channelBroker{
	events: make(chan *FanoutEvent, constants.CHANNEL_SIZE),
	done:   make(chan struct{}),
}

// Publish 实现 Producer 接口
func (b *channelBroker) Publish(event *FanoutEvent) error {
	select {
	case <-b.done:
		return errors.New("channel broker closed")
	case b.events <- event:
		return nil
	default:
		zap.L().Warn(fmt.Sprintf("fanout channel full, drop event conversation=%s", event.ConversationId))
		return nil
	}
}

// Close 实现 Producer 接口
func (b *channelBroker) Close() error {
	close(b.done)
	return nil
}

// StartConsume 循环消费扇出事件并交给注入的 EventHandler
func (b *channelBroker) StartConsume() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("channel broker panic: %v", r))
		}
	}()
	for {
		select {
		case <-b.done:
			return
		case event := <-b.events:
			handler := GetEventHandler()
			if handler == nil {
				continue
			}
			if err := handler.HandleFanoutEvent(event); err != nil {
				zap.L().Error(err.Error())
			}
		}
	}
}
