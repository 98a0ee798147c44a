package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apprevenue "github.com/transitledger/backend/internal/application/revenue"
	"github.com/transitledger/backend/internal/domain/revenue"
	"github.com/transitledger/backend/internal/infrastructure/config"
)

const (
	configCacheKey = "transitledger:system-configuration:active"
	configCacheTTL = 10 * time.Minute
)

// NewRedisClient creates a Redis client and verifies connectivity
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// RedisConfigCache caches the active system configuration in Redis with a
// short TTL. The TTL bounds staleness across instances if an invalidation is
// lost.
type RedisConfigCache struct {
	client *redis.Client
}

// NewRedisConfigCache creates a new RedisConfigCache
func NewRedisConfigCache(client *redis.Client) *RedisConfigCache {
	return &RedisConfigCache{client: client}
}

// Get returns the cached configuration, or (nil, nil) on a miss
func (c *RedisConfigCache) Get(ctx context.Context) (*revenue.SystemConfiguration, error) {
	data, err := c.client.Get(ctx, configCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var cfg revenue.SystemConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		// A corrupt entry behaves like a miss so the caller falls back
		// to the database.
		return nil, nil
	}
	return &cfg, nil
}

// Set stores the configuration with the cache TTL
func (c *RedisConfigCache) Set(ctx context.Context, cfg *revenue.SystemConfiguration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, configCacheKey, data, configCacheTTL).Err()
}

// Invalidate drops the cached configuration
func (c *RedisConfigCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, configCacheKey).Err()
}

var _ apprevenue.ConfigCache = (*RedisConfigCache)(nil)
