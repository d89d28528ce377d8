package cron

import (
	"context"
	"log"
	"time"

	"homely/config"
	"homely/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// sweepInterval is how often the fallback sweep looks for pending bookings
// whose expiry task was lost.
const sweepInterval = 5 * time.Minute

// PendingSweeper is the slice of the booking service the fallback sweep needs.
type PendingSweeper interface {
	tasks.PendingExpirer
	ExpireStalePending(ctx context.Context) (int, error)
}

// InitExpiryWorker runs the async expiry worker in background.
func InitExpiryWorker(svc PendingSweeper) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpiry, tasks.NewBookingExpiryHandler(svc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Fallback sweep for pending bookings whose delayed task never fired.
	go runPendingSweep(svc)

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func runPendingSweep(svc PendingSweeper) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		n, err := svc.ExpireStalePending(ctx)
		cancel()
		if err != nil {
			log.Printf("[ExpiryWorker] ❌ Pending sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("[ExpiryWorker] ⏰ Expired %d stale pending bookings", n)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ExpiryWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
