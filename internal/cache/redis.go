package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisCache struct {
	client *redis.Client
	prefix string
	logger *logrus.Entry
}

// RedisOptions configures the Redis-backed cache
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(opts RedisOptions, logger *logrus.Logger) (Cache, error) {
	if logger == nil {
		logger = logrus.New()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithField("addr", opts.Addr).Info("Connected to Redis")

	return &redisCache{
		client: client,
		prefix: opts.Prefix,
		logger: logger.WithField("component", "redis_cache"),
	}, nil
}

func (r *redisCache) key(key string) string {
	return r.prefix + key
}

// Get retrieves a value by key
func (r *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to get key")
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return val, nil
}

// Set stores a value with optional TTL
func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("Failed to set key")
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes keys
func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = r.key(key)
	}

	if err := r.client.Del(ctx, prefixed...).Err(); err != nil {
		r.logger.WithError(err).WithField("keys", keys).Error("Failed to delete keys")
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection
func (r *redisCache) Close() error {
	return r.client.Close()
}
