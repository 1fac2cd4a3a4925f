package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores documents as plain string values under prefix+key.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if client == nil {
		panic("persistence: redis client required")
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) key(key string) string {
	return r.prefix + key
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis backend: get %s: %w", key, err)
	}
	return body, nil
}

func (r *RedisBackend) Put(ctx context.Context, key string, body []byte) error {
	if err := r.client.Set(ctx, r.key(key), body, 0).Err(); err != nil {
		return fmt.Errorf("redis backend: set %s: %w", key, err)
	}
	return nil
}
