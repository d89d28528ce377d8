package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the snapshot served by the health endpoint. Cache and
// Locks are the two Redis instances backing slot caching and day locking.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Cache     bool      `json:"cache"`
	Locks     bool      `json:"locks"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every dependency answered its last check.
func (h HealthStatus) Healthy() bool {
	return h.Mongo && h.Cache && h.Locks
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor pings the dependencies once immediately, then every
// 30 seconds, and keeps the in-memory snapshot current.
func StartHealthMonitor(cache, locks *redis.Client, mongoClient *mongo.Client) {
	check := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status := HealthStatus{
			Mongo:     mongoClient.Ping(ctx, nil) == nil,
			Cache:     cache.Ping(ctx).Err() == nil,
			Locks:     locks.Ping(ctx).Err() == nil,
			CheckedAt: time.Now(),
		}

		healthMu.Lock()
		currentHealth = status
		healthMu.Unlock()
	}

	go func() {
		check()
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			check()
		}
	}()
}
