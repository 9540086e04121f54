package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁
// ============================================================================
//
// 存款路径上的锁只用来拦截同一账户的重复提交（网络抖动导致客户端连发两次同一请求），
// 余额的正确性由数据库的原子增量更新和 request_no 唯一索引保证，与锁无关。
// 加锁：SET key value NX EX timeout；释放：Lua 脚本校验持有者后删除。
// ============================================================================

var (
	ErrLockFailed = errors.New("获取分布式锁失败")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string        // 锁的 key
	value      string        // 锁的 value（用于验证锁的持有者）
	expiration time.Duration // 锁的过期时间
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
// SetNX 保证同一时刻只有一个客户端能获取到锁；EX 防止持有者崩溃后死锁
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
// Lua 脚本保证"检查持有者 + 删除"的原子性，避免锁过期后误删他人持有的锁
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewDepositLock 创建存款锁（按账户维度）
// 不同账户可以并发存款；同一账户的并发请求在锁内做幂等复查
func NewDepositLock(client *redis.Client, accountID int64, requestNo string) *DistributedLock {
	key := fmt.Sprintf("deposit:lock:account:%d", accountID)
	// value 使用 requestNo，便于追踪是哪个请求持有锁
	return NewDistributedLock(client, key, requestNo, 30*time.Second)
}
