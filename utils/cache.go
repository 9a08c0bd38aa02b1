// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/Pushkar2103/parkezy-new/config"

	"github.com/go-redis/redis/v8"
)

// ConnectCache dials the cache DB and pings it.
func ConnectCache(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", config.AppConfig.RedisAddr, err)
	}
	return client, nil
}

// NewQueueClient returns a client on the queue DB, used for health pings of the sweep queue.
func NewQueueClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}
