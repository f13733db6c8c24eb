package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"surfcast/pkg/logging"
)

// regenLockTTL bounds how long a crashed holder can block regeneration.
const regenLockTTL = 30 * time.Second

// RegenLocker is a best-effort guard against concurrent regeneration of
// the same report. Acquisition failure is advisory: callers proceed
// without the lock, which matches the tolerated thundering-herd behavior.
type RegenLocker interface {
	TryAcquire(ctx context.Context, key string) (acquired bool, release func())
}

// redisLocker implements RegenLocker with a SETNX key per (spot, locale).
type redisLocker struct {
	client *redis.Client
	logger *logging.StructuredLogger
}

// NewRedisLocker creates a Redis-backed regeneration locker.
func NewRedisLocker(client *redis.Client, logger *logging.StructuredLogger) RegenLocker {
	return &redisLocker{client: client, logger: logger}
}

func (l *redisLocker) TryAcquire(ctx context.Context, key string) (bool, func()) {
	redisKey := fmt.Sprintf("surfcast:regen:%s", key)

	ok, err := l.client.SetNX(ctx, redisKey, 1, regenLockTTL).Result()
	if err != nil {
		// Redis being down must never block a regeneration.
		l.logger.Warn(ctx, "[REGEN_LOCK] Lock acquisition errored, proceeding unlocked", logging.Fields{
			"key":   key,
			"error": err.Error(),
		})
		return true, func() {}
	}
	if !ok {
		return false, func() {}
	}

	return true, func() {
		if err := l.client.Del(context.Background(), redisKey).Err(); err != nil {
			l.logger.Warn(context.Background(), "[REGEN_LOCK] Lock release failed, will expire via TTL", logging.Fields{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

// noopLocker always grants the lock. Used when Redis is disabled.
type noopLocker struct{}

// NewNoopLocker creates a locker that never blocks.
func NewNoopLocker() RegenLocker {
	return noopLocker{}
}

func (noopLocker) TryAcquire(ctx context.Context, key string) (bool, func()) {
	return true, func() {}
}
