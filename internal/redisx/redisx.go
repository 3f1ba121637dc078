package redisx

import (
	"context"
	"time"

	"github.com/Veysel440/go-auth-smoke/internal/config"
	"github.com/redis/go-redis/v9"
)

// New returns nil when REDIS_ADDR is unset; callers fall back to in-process
// limiters.
func New(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
}

func Ping(ctx context.Context, c *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.Ping(ctx).Err()
}
