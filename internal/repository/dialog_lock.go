package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrDialogBusy 表示对话正被另一轮处理占用，重试耗尽。
var ErrDialogBusy = errors.New("dialog is busy")

const (
	lockTTL        = 30 * time.Second
	lockRetries    = 20
	lockRetryDelay = 100 * time.Millisecond
)

// DialogLocker 为单个对话的整轮读-改-写提供串行化保障。
// 不同对话之间互不影响。
type DialogLocker interface {
	// Lock 获取对话锁，返回释放函数；超过重试次数返回 ErrDialogBusy。
	Lock(ctx context.Context, dialogID uint) (func(), error)
}

type redisDialogLocker struct {
	redisClient *redis.Client
}

// NewDialogLocker 创建一个基于 Redis SETNX 的对话锁。
func NewDialogLocker(redisClient *redis.Client) DialogLocker {
	return &redisDialogLocker{redisClient: redisClient}
}

func lockKey(dialogID uint) string {
	return fmt.Sprintf("dialog:lock:%d", dialogID)
}

// Lock 以有限重试获取 SETNX 锁；TTL 防止崩溃后死锁。
func (l *redisDialogLocker) Lock(ctx context.Context, dialogID uint) (func(), error) {
	key := lockKey(dialogID)
	for i := 0; i < lockRetries; i++ {
		ok, err := l.redisClient.SetNX(ctx, key, "1", lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire dialog lock: %w", err)
		}
		if ok {
			return func() {
				l.redisClient.Del(context.Background(), key)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
	return nil, ErrDialogBusy
}
