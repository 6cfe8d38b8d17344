package ports

import (
	"context"
	"time"

	"delivery-schedule-service/internal/domain"
)

// Port: the only store the engine writes. Occurrence rows are never
// edited in place; cancellation is a status flip.
type OccurrenceRepository interface {
	// Return materialized dates for a subscription in [from, to]
	// inclusive, regardless of status.
	ListDates(ctx context.Context, subscriptionID int, from, to time.Time) ([]time.Time, error)

	// Return the latest materialized date for a subscription.
	// The bool is false when nothing has been materialized yet.
	LastDate(ctx context.Context, subscriptionID int) (time.Time, bool, error)

	// Persist a new occurrence. ErrDuplicateDate when the
	// (subscription, date) pair is already taken.
	Create(ctx context.Context, occ *domain.DeliveryOccurrence) error

	// Return occurrences for a subscription in [from, to] inclusive.
	List(ctx context.Context, subscriptionID int, from, to time.Time) ([]domain.DeliveryOccurrence, error)

	// Mark one occurrence cancelled, keeping its date occupied.
	Cancel(ctx context.Context, subscriptionID int, date time.Time) error
}
