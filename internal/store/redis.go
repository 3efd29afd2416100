package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 2 * time.Second

// RedisKV stores values in Redis under a common key prefix
type RedisKV struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisKV creates a Redis-backed store
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{
		client:  client,
		prefix:  prefix,
		timeout: defaultRedisTimeout,
	}
}

// NewRedisKVFromURL parses a redis:// URL and connects a client for it
func NewRedisKVFromURL(redisURL, prefix string) (*RedisKV, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisKV(redis.NewClient(opt), prefix), nil
}

// Get reads the value stored under key
func (r *RedisKV) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes the value under key with no expiry
func (r *RedisKV) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks that the server is reachable
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (r *RedisKV) Close() error {
	return r.client.Close()
}
