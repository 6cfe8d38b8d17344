package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"delivery-schedule-service/internal/ports"
)

// Redis-backed implementation of the SubscriptionLocker port for
// multi-process deployments. The token carries a TTL so a crashed run
// cannot wedge a subscription forever; the occurrence table's unique
// constraint covers the window where an expired token lets two runs
// overlap.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{Client: client, TTL: ttl}
}

// Release only deletes the key when it still holds our token, so a run
// that outlived its TTL cannot free a lock someone else now owns.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

func (l *RedisLocker) Acquire(
	ctx context.Context,
	subscriptionID int,
	wait time.Duration,
) (ports.UnlockFunc, error) {
	key := lockKey(subscriptionID)
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock: acquire %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				if err := l.Client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
					return fmt.Errorf("redis lock: release %s: %w", key, err)
				}
				return nil
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("redis lock: %s: %w", key, ports.ErrLockContention)
		}

		timer := time.NewTimer(50 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func lockKey(subscriptionID int) string {
	return fmt.Sprintf("schedule:lock:%d", subscriptionID)
}
