package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a previously acquired subscription lock.
type UnlockFunc func(ctx context.Context) error

// Port: per-subscription exclusivity. No two concurrent runs may
// materialize the same subscription; acquisition blocks up to wait and
// then fails with ErrLockContention instead of deadlocking.
type SubscriptionLocker interface {
	Acquire(ctx context.Context, subscriptionID int, wait time.Duration) (UnlockFunc, error)
}
