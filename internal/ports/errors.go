package ports

import "errors"

var (
	// ErrNotFound signals a missing record behind any repository port.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateDate signals that an occurrence for the same
	// (subscription, date) pair already exists. The unique constraint
	// backing it is the storage-level safety net under the lock.
	ErrDuplicateDate = errors.New("occurrence date already materialized")

	// ErrLockContention signals that a subscription's exclusivity token
	// is held elsewhere. Transient; safe to retry on the next trigger.
	ErrLockContention = errors.New("subscription lock contended")
)
