package domain

import "time"

type OccurrenceStatus string

const (
	OccurrenceScheduled OccurrenceStatus = "scheduled"
	OccurrenceCancelled OccurrenceStatus = "cancelled"
)

// DeliveryOccurrence pins one concrete delivery date for a subscription.
// At most one occurrence exists per (subscription, date). Rows are
// append-only: cancellation flips the status and keeps the date occupied
// so the scheduler never refills it.
type DeliveryOccurrence struct {
	OccurrenceID   int64
	SubscriptionID int
	Date           time.Time
	Status         OccurrenceStatus
	ZoneID         int
	Window         *TimeWindow
	CreatedAt      time.Time
}
