package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The cache layer sits in front of postgres on every intent, so a slow or
// partitioned redis must fail fast instead of stalling order flow.
const (
	redisDialTimeout  = 5 * time.Second
	redisReadTimeout  = 3 * time.Second
	redisWriteTimeout = 3 * time.Second
)

// RedisConfig describes the cache layer. Orders live under per-id keys with
// user and side index sets alongside; trades go to a single capped list.
// OrderTTL bounds how long a resting order can outlive the engine process
// that wrote it.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	OrderTTL     time.Duration
	MaxTrades    int
}

func (cfg RedisConfig) addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// dialRedis opens a pooled client and proves the connection with a bounded
// ping before any store adopts it.
func dialRedis(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisReadTimeout,
		WriteTimeout: redisWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
