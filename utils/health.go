package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Store     string    `json:"store"`
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

// CheckHealth pings every dependency once and stores the snapshot.
// A nil mongo client means the memory store is in use.
func CheckHealth(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := HealthStatus{Store: "memory", Mongo: true, CheckedAt: time.Now()}
	for _, client := range redisClients {
		status.Redis = append(status.Redis, client.Ping(ctx).Err() == nil)
	}
	if mongoClient != nil {
		status.Store = "mongo"
		status.Mongo = mongoClient.Ping(ctx, nil) == nil
	}

	mu.Lock()
	currentHealth = status
	mu.Unlock()
	return status
}

// Healthy reports whether every dependency in s answered.
func (s HealthStatus) Healthy() bool {
	if !s.Mongo {
		return false
	}
	for _, ok := range s.Redis {
		if !ok {
			return false
		}
	}
	return true
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
func StartHealthMonitor(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) {
	CheckHealth(ctx, redisClients, mongoClient)
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients, mongoClient)
			}
		}
	}()
}
