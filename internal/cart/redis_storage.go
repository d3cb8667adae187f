package cart

import (
	"context"
	"time"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(key string) string
	Ping(ctx context.Context) error
}

// RedisStorage persists carts as plain string values under namespaced keys.
type RedisStorage struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisStorage stores carts through client. A zero ttl keeps carts forever.
func NewRedisStorage(client redisStore, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.client.CartKey(key))
	if redis.IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.CartKey(key), value, r.ttl)
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
