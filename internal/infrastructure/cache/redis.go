package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fraudlens/internal/config"
	"fraudlens/pkg/logger"
)

// KeyRateLimitPrefix namespaces fixed-window rate limit counters
const KeyRateLimitPrefix = "rate_limit:"

// RedisCache wraps the Redis client. fraudlens keeps no analysis state in
// Redis; it only backs request rate limiting shared across instances.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *logger.Logger
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisCache, error) {
	log = log.WithComponent("redis")
	log.Info().Str("addr", cfg.Addr()).Msg("connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.Info().Msg("connected to Redis successfully")

	return NewRedisWithClient(client, cfg.KeyPrefix, log), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, keyPrefix string, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, keyPrefix: keyPrefix, logger: log}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	c.logger.Info().Msg("closing Redis connection")
	return c.client.Close()
}

// Ping checks connectivity, used by the readiness probe
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) key(k string) string {
	return c.keyPrefix + k
}

// CheckRateLimit increments the caller's counter for the current window.
// Returns (allowed, remaining, resetTime, error).
func (c *RedisCache) CheckRateLimit(ctx context.Context, clientID string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(window)
	windowKey := c.key(rateLimitKey(clientID, windowStart, window))

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := incr.Val()
	remaining := max(limit-count, 0)

	return count <= limit, remaining, windowStart.Add(window), nil
}

func rateLimitKey(clientID string, windowStart time.Time, window time.Duration) string {
	return fmt.Sprintf("%s%s:%d", KeyRateLimitPrefix, clientID, windowStart.Unix()/int64(window.Seconds()))
}
