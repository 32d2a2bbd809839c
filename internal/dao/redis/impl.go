// Package redis 提供 Redis 缓存操作的封装
// 本文件实现 AsyncCacheService 接口（Redis 实现 + Worker Pool）
package redis

import (
	"context"
	"errors"
	"time"

	"seqchat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisCache AsyncCacheService 的 Redis 实现
type redisCache struct {
	client   *redis.Client
	taskChan chan func()
}

// NewRedisCache 创建 Redis 缓存服务并启动 Worker Pool
// workerNum: 后台协程数量
// bufferSize: 任务通道缓冲区大小
func NewRedisCache(client *redis.Client, workerNum, bufferSize int) AsyncCacheService {
	c := &redisCache{
		client:   client,
		taskChan: make(chan func(), bufferSize),
	}
	for i := 0; i < workerNum; i++ {
		go c.startWorker()
	}
	zap.L().Info("Redis cache workers started",
		zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return c
}

// startWorker 单个 Worker 消费循环，panic 后自动重启
func (c *redisCache) startWorker() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Redis worker panic", zap.Any("recover", r))
			go c.startWorker()
		}
	}()
	for action := range c.taskChan {
		if action != nil {
			action()
		}
	}
}

// SubmitTask 提交异步缓存任务
// 队列满时降级为同步执行，保证任务不丢
func (c *redisCache) SubmitTask(action func()) {
	select {
	case c.taskChan <- action:
	default:
		zap.L().Warn("Redis cache task channel full, executing synchronously")
		action()
	}
}

// Set 设置键值对并指定过期时间
func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Get 获取键对应的值
// 键不存在返回空字符串和 nil，不视为错误
func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Delete 删除键
func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis del key %s", key)
	}
	return nil
}

// DeleteByPattern 删除匹配模式的所有键
// 使用 SCAN 渐进遍历，避免 KEYS 阻塞
func (c *redisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return errorx.Wrapf(err, errorx.CodeCacheError, "redis del key %s", iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis scan pattern %s", pattern)
	}
	return nil
}
