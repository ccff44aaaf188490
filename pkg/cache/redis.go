// cache/redis.go
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/henryktews/vue-storefront/pkg/manifest"
	"github.com/redis/go-redis/v9"
)

// Redis backs the cache with a shared Redis instance so multiple
// middleware replicas see the same entries.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(spec *manifest.Cache) *Redis {
	return &Redis{rdb: redis.NewClient(&redis.Options{
		Addr:     spec.RedisAddr,
		DB:       spec.RedisDB,
		Password: spec.RedisPassword,
	})}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, key, val, ttl).Err()
}
