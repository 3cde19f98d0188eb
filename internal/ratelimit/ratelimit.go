package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "rate_limit:"

type Limiter interface {
	// Allow counts one hit for key and reports whether it is still within
	// the limit. Redis failures let the request through.
	Allow(ctx context.Context, key string) bool
}

type redisLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
	logger *zap.Logger
}

// NewRedisLimiter returns a fixed-window limiter. A nil client disables
// limiting.
func NewRedisLimiter(rdb *redis.Client, max int64, window time.Duration, logger *zap.Logger) Limiter {
	if rdb == nil {
		logger.Warn("redis not configured, rate limiting disabled")
		return noopLimiter{}
	}
	return &redisLimiter{rdb: rdb, max: max, window: window, logger: logger}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) bool {
	count, err := l.hit(ctx, keyPrefix+key)
	if err != nil {
		l.logger.Error("rate limit check failed", zap.String("key", key), zap.Error(err))
		return true
	}
	return count <= l.max
}

func (l *redisLimiter) hit(ctx context.Context, key string) (int64, error) {
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := l.rdb.PExpire(ctx, key, l.window).Err(); err != nil {
			return 0, fmt.Errorf("pexpire %s: %w", key, err)
		}
	}
	return count, nil
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) bool { return true }
