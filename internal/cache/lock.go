package cache

import (
	"context"
	"fmt"
	"survey_backend/internal/model"
	"survey_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Locker 每张问卷同一时间只允许一个保存操作
type Locker interface {
	// TryLock 锁已被占用时返回 false
	TryLock(ctx context.Context, surveyID uint) (release func(), ok bool, err error)
}

func lockKey(surveyID uint) string {
	return fmt.Sprintf("lock:survey:%d", surveyID)
}

// 只删除自己持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{Redis: rdb, TTL: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context, surveyID uint) (func(), bool, error) {
	key := lockKey(surveyID)
	token := model.GenerateUUID()

	ok, err := l.Redis.SetNX(ctx, key, token, l.TTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// 释放失败时锁保留到 TTL 过期
		if err := releaseScript.Run(context.Background(), l.Redis, []string{key}, token).Err(); err != nil {
			logger.Log.Warn("Failed to release survey lock",
				zap.Uint("surveyId", surveyID),
				zap.Duration("ttl", l.TTL),
				zap.Error(err),
			)
		}
	}
	return release, true, nil
}

// MemoryLocker 单实例部署、未启用 Redis 时使用
type MemoryLocker struct {
	mu   sync.Mutex
	held map[uint]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[uint]bool)}
}

func (l *MemoryLocker) TryLock(_ context.Context, surveyID uint) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[surveyID] {
		return nil, false, nil
	}
	l.held[surveyID] = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, surveyID)
			l.mu.Unlock()
		})
	}
	return release, true, nil
}
