// Package seqalloc 实现每信箱的序号段分配器
// 序号必须由共享存储原子发放：多实例部署下绝不允许进程内计数器。
// Redis 只缓存当前段，段用尽时回源 MySQL 水位行领取新段；
// Redis 段丢失最多造成序号空洞，不会产生重复
package seqalloc

import (
	"context"
	"time"

	"seqchat_server/pkg/constants"
	"seqchat_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// 段内原子发号：KEYS[1]=key; ARGV[1]=need; ARGV[2]=segEnd; ARGV[3]=nowMs
// 返回：{0,start,end} 成功；{1} 段不存在；{3,curr,end} 段用尽/不一致
var luaInSegment = redis.NewScript(`
  local k = KEYS[1]
  local need = tonumber(ARGV[1])
  local segEnd = tonumber(ARGV[2])
  local nowms = tonumber(ARGV[3])

  local curr = redis.call('HGET', k, 'curr')
  local endv = redis.call('HGET', k, 'end')
  if not curr or not endv then
    return {1}
  end
  curr = tonumber(curr); endv = tonumber(endv)

  if segEnd ~= 0 and segEnd ~= endv then
    return {3, curr, endv}
  end

  local start = curr + 1
  local newv  = curr + need
  if newv > endv then
    return {3, curr, endv}
  end
  redis.call('HSET', k, 'curr', newv, 'mill', nowms)
  return {0, start, endv}
`)

// 装载/刷新段：curr=start-1, end=end，并设置 TTL 防止冷信箱常驻
var luaSetSegment = redis.NewScript(`
  local k = KEYS[1]
  local curr = tonumber(ARGV[1])
  local endv = tonumber(ARGV[2])
  local nowms= tonumber(ARGV[3])
  redis.call('HSET', k, 'curr', curr, 'end', endv, 'mill', nowms)
  redis.call('PEXPIRE', k, 3600000)
  return 1
`)

// SegmentDAO 段回源接口，由水位 Repository 实现
type SegmentDAO interface {
	AllocSegment(objectType, objectId string, block int64) (start, end int64, err error)
}

// Allocator 序号段分配器
type Allocator struct {
	Rdb         redis.Scripter
	DAO         SegmentDAO
	BlockSizeFn func(objectType, objectId string, want int64) int64
	KeyFn       func(objectType, objectId string) string
	MaxRetry    int
}

// New 创建分配器，未设置的策略函数取默认值
func New(rdb redis.Scripter, dao SegmentDAO) *Allocator {
	return &Allocator{Rdb: rdb, DAO: dao}
}

// defaultBlock 段大小策略：冷信箱领小段，热信箱按需放大
func defaultBlock(_ string, _ string, want int64) int64 {
	if want <= 0 {
		want = 1
	}
	if want < 32 {
		return constants.SEQ_ALLOC_MIN_BLOCK
	}
	return want * 8
}

func defaultKey(objectType, objectId string) string {
	return "seq:blk:" + objectType + ":" + objectId
}

func (a *Allocator) ensure() {
	if a.BlockSizeFn == nil {
		a.BlockSizeFn = defaultBlock
	}
	if a.KeyFn == nil {
		a.KeyFn = defaultKey
	}
	if a.MaxRetry == 0 {
		a.MaxRetry = constants.SEQ_ALLOC_MAX_RETRY
	}
}

// Malloc 为指定信箱分配 need 个连续序号，返回起始序号
// 先尝试在 Redis 现有段内发号，段不存在或用尽时回源领段重试
func (a *Allocator) Malloc(ctx context.Context, objectType, objectId string, need int64) (int64, error) {
	a.ensure()
	if need <= 0 {
		need = 1
	}
	key := a.KeyFn(objectType, objectId)
	nowms := time.Now().UnixMilli()

	// 1) 先尝试在现有段内发号
	if res, e := luaInSegment.Run(ctx, a.Rdb, []string{key}, need, 0, nowms).Result(); e == nil {
		arr := res.([]interface{})
		switch arr[0].(int64) {
		case 0:
			return arr[1].(int64), nil
		case 1, 3:
			// 段不存在 / 段用尽 -> 回源
		default:
			return 0, errorx.Newf(errorx.CodeServerBusy, "unknown redis state %v", arr[0])
		}
	}

	// 2) 回源 MySQL 领段 -> 写回 Redis -> 再尝试段内发号
	var lastErr error
	for i := 0; i < a.MaxRetry; i++ {
		block := a.BlockSizeFn(objectType, objectId, need)

		segStart, segEnd, e := a.DAO.AllocSegment(objectType, objectId, block)
		if e != nil {
			lastErr = e
			break
		}

		if _, e = luaSetSegment.Run(ctx, a.Rdb, []string{key}, segStart-1, segEnd, nowms).Result(); e != nil {
			lastErr = e
			time.Sleep(10 * time.Millisecond)
			continue
		}

		res2, e := luaInSegment.Run(ctx, a.Rdb, []string{key}, need, segEnd, nowms).Result()
		if e != nil {
			lastErr = e
			time.Sleep(10 * time.Millisecond)
			continue
		}
		arr := res2.([]interface{})
		if arr[0].(int64) == 0 {
			return arr[1].(int64), nil
		}
		// 段冲突（其他实例刷新了段），小憩后重试
		time.Sleep(5 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errorx.New(errorx.CodeServerBusy, "seq malloc retry exceeded")
	}
	return 0, lastErr
}
