package entitlement

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores codes as plain string keys without expiry.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	code, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (r *RedisBackend) Put(ctx context.Context, key, code string) error {
	return r.client.Set(ctx, key, code, 0).Err()
}
