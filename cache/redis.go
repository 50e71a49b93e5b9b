package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis is a Redis-backed translation cache shared across processes.
// The single-flight gate is per process; two processes may still race,
// which only costs a duplicate backend call.
type Redis struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	group     singleflight.Group
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int    // TTL in seconds (0 = no expiration)
	KeyPrefix string // Prefix for all keys (default: "cardlingo:")
}

// NewRedis creates a new Redis cache with the given configuration.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisFromClient creates a Redis cache from an existing client.
func NewRedisFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *Redis {
	if keyPrefix == "" {
		keyPrefix = "cardlingo:"
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &Redis{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from Redis.
func (c *Redis) Get(key string) (string, bool) {
	ctx := context.Background()
	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Treat transport errors as a cache miss.
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *Redis) Set(key string, value string) error {
	ctx := context.Background()
	return c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err()
}

// GetOrCompute returns the cached value for key, computing it at most
// once per key among concurrent callers in this process.
func (c *Redis) GetOrCompute(key string, compute func() (string, error)) (string, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, ok := c.Get(key); ok {
			return cached, nil
		}
		result, err := compute()
		if err != nil {
			return "", err
		}
		_ = c.Set(key, result)
		return result, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Close closes the Redis connection.
func (c *Redis) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *Redis) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}

// Verify Redis implements TranslationCache
var _ TranslationCache = (*Redis)(nil)
