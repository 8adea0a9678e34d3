package redisdb

import (
	"context"
	"fmt"

	"github.com/admin-dashboard-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to REDIS_URL and checks the server answers.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}
