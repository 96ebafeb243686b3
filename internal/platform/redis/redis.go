package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"faqdesk/internal/config"
)

// New builds the client from the redis config section. OpTimeoutSeconds
// covers both reads and writes; zero values leave the driver defaults.
func New(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	if cfg.OpTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(cfg.OpTimeoutSeconds) * time.Second
		opts.WriteTimeout = time.Duration(cfg.OpTimeoutSeconds) * time.Second
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return client, nil
}
