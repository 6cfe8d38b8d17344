package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"delivery-schedule-service/internal/ports"
)

// In-process implementation of the SubscriptionLocker port for local
// single-node runs and tests. Exclusivity holds within one process only.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[int]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[int]struct{})}
}

// Acquire polls for the token until the wait budget runs out, then fails
// with ErrLockContention rather than blocking indefinitely.
func (l *MemoryLocker) Acquire(
	ctx context.Context,
	subscriptionID int,
	wait time.Duration,
) (ports.UnlockFunc, error) {
	deadline := time.Now().Add(wait)

	for {
		if l.tryAcquire(subscriptionID) {
			return func(context.Context) error {
				l.release(subscriptionID)
				return nil
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("memory lock: subscription %d: %w", subscriptionID, ports.ErrLockContention)
		}

		timer := time.NewTimer(10 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *MemoryLocker) tryAcquire(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[id]; ok {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *MemoryLocker) release(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
