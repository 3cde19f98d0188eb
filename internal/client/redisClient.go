package client

import (
	"context"
	"fmt"
	"time"

	"minecraft-store/internal/config"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis. It returns nil when no address is
// configured; callers treat that as "rate limiting disabled".
func InitRedis(ctx context.Context, cfg *config.Redis) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
