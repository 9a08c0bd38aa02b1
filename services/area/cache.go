package area

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const ownerKeyPrefix = "parkezy:area:owner:"

// OwnerCache caches area ownership for authorization lookups.
type OwnerCache interface {
	Get(ctx context.Context, areaID string) (ownerID string, ok bool, err error)
	Set(ctx context.Context, areaID, ownerID string) error
	Invalidate(ctx context.Context, areaID string) error
}

// RedisOwnerCache keeps owner ids in Redis with a TTL.
type RedisOwnerCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisOwnerCache(client *redis.Client, ttl time.Duration) *RedisOwnerCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisOwnerCache{client: client, ttl: ttl}
}

func (c *RedisOwnerCache) Get(ctx context.Context, areaID string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	owner, err := c.client.Get(ctx, ownerKeyPrefix+areaID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func (c *RedisOwnerCache) Set(ctx context.Context, areaID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, ownerKeyPrefix+areaID, ownerID, c.ttl).Err()
}

func (c *RedisOwnerCache) Invalidate(ctx context.Context, areaID string) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, ownerKeyPrefix+areaID).Err()
}

// NopOwnerCache always misses.
type NopOwnerCache struct{}

func (NopOwnerCache) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NopOwnerCache) Set(context.Context, string, string) error        { return nil }
func (NopOwnerCache) Invalidate(context.Context, string) error         { return nil }
