package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpulse-engine/internal/config"
	"jobpulse-engine/internal/logging"
	"jobpulse-engine/pkg/models"
)

// RedisCache is the Redis-backed ResultCache. Values are JSON-encoded job
// slices; expiry is delegated to Redis key TTLs.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisCache creates a Redis-backed cache from the application config.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisCache{
		client: redis.NewClient(opts),
		ttl:    cfg.Cache.TTL,
		logger: logging.GetGlobalLogger(),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]models.CanonicalJob, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var jobs []models.CanonicalJob
	if err := json.Unmarshal([]byte(data), &jobs); err != nil {
		// Corrupt entries are dropped rather than surfaced to callers
		c.logger.Warn("Dropping corrupt cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		c.client.Del(ctx, key)
		return nil, ErrMiss
	}
	return jobs, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, jobs []models.CanonicalJob) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// New selects the cache backend from configuration. Unknown backends fall
// back to the in-process cache.
func New(cfg *config.Config) ResultCache {
	switch cfg.Cache.Backend {
	case "redis":
		return NewRedisCache(cfg)
	default:
		return NewMemoryCache(cfg.Cache.TTL)
	}
}
