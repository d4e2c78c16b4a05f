package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gatekeeper/pkg/platform/sentinel"
)

// KeyPrefix namespaces short links in a shared Redis.
const KeyPrefix = "shortlink:"

// RedisStore shares short links across instances. Keys carry no TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client. The client lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// PutIfAbsent uses SETNX so two instances can never claim the same code.
func (s *RedisStore) PutIfAbsent(ctx context.Context, code, target string) (bool, error) {
	ok, err := s.client.SetNX(ctx, KeyPrefix+code, target, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return ok, nil
}

func (s *RedisStore) Get(ctx context.Context, code string) (string, error) {
	target, err := s.client.Get(ctx, KeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("short link not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return target, nil
}
