package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/foyer/core"
)

// NewRedisClient returns nil when no address is configured.
func NewRedisClient(conf *core.Config) *redis.Client {
	if conf.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

func Ping(ctx context.Context, c *redis.Client) error {
	return errors.Wrap(c.Ping(ctx).Err(), "pinging redis")
}

// RedisKV is a string key-value store backed by redis.
type RedisKV struct {
	c *redis.Client
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (kv *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := kv.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", core.ErrCacheMiss
		}
		return "", errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (kv *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return errors.Wrap(kv.c.Set(ctx, key, value, ttl).Err(), "redis set")
}

func (kv *RedisKV) Delete(ctx context.Context, keys ...string) error {
	return errors.Wrap(kv.c.Del(ctx, keys...).Err(), "redis del")
}
