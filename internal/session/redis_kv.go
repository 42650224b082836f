package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "eventplanner:session:"

// RedisKV stores browser slots in Redis. A zero ttl keeps keys until deleted.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (k *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := k.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (k *RedisKV) Set(ctx context.Context, key, value string) error {
	return k.client.Set(ctx, redisKey(key), value, k.ttl).Err()
}

func (k *RedisKV) Delete(ctx context.Context, key string) error {
	return k.client.Del(ctx, redisKey(key)).Err()
}
