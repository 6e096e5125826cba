package kv

import (
	"context"
	"errors"

	"github.com/thedivyam/noon-sde3/pkg/redis"
)

// RedisStore keeps entries under namespaced redis keys without expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.client.StorageKey(key))
	if errors.Is(err, redis.ErrNil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", wrap("get", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return wrap("set", key, s.client.Set(ctx, s.client.StorageKey(key), value, 0))
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return wrap("delete", key, s.client.Del(ctx, s.client.StorageKey(key)))
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return wrap("ping", "", s.client.Ping(ctx))
}

func (s *RedisStore) Close() error {
	return wrap("close", "", s.client.Close())
}
