// File: utils/lock.go
package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when another writer holds the provider-day lock.
var ErrLockNotAcquired = errors.New("slot lock not acquired")

// SlotLocker serializes booking writes per (provider, date) so the
// read-check-insert sequence in booking creation cannot interleave with a
// competing creation for the same day.
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLocker creates a locker that uses a per provider-day Redis key.
func NewSlotLocker(client *redis.Client, ttl time.Duration) *SlotLocker {
	return &SlotLocker{client: client, ttl: ttl}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// WithProviderDayLock runs fn while holding the lock for (providerID, date).
// The lock expires after the configured TTL so a crashed holder cannot wedge
// the day.
func (l *SlotLocker) WithProviderDayLock(ctx context.Context, providerID, date string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:slots:%s:%s", providerID, date)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_, _ = unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}
