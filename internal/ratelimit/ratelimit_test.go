package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestAllowWithinWindow(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	l := NewRedisLimiter(rdb, 5, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "5.6.7.8"), "other keys have their own counter")

	ttl := mr.TTL("rate_limit:1.2.3.4")
	assert.Equal(t, time.Minute, ttl)
}

func TestAllowResetsAfterWindow(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	l := NewRedisLimiter(rdb, 1, time.Minute, zap.NewNop())
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "ip"))
	assert.False(t, l.Allow(ctx, "ip"))

	mr.FastForward(time.Minute)

	assert.True(t, l.Allow(ctx, "ip"))
}

func TestAllowFailsOpen(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	l := NewRedisLimiter(rdb, 1, time.Minute, zap.NewNop())
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(context.Background(), "ip"))
	}
}

func TestNilClientDisablesLimiting(t *testing.T) {
	l := NewRedisLimiter(nil, 1, time.Minute, zap.NewNop())

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(context.Background(), "ip"))
	}
}
