package ports

import (
	"context"

	"delivery-schedule-service/internal/domain"
)

// Port: read-only access to subscriptions and their pause intervals.
type SubscriptionRepository interface {
	GetSubscription(ctx context.Context, subscriptionID int) (domain.Subscription, error)
	// Return subscriptions eligible for schedule extension
	// (active and paused; cancelled ones are excluded).
	ListSchedulable(ctx context.Context) ([]domain.Subscription, error)
}
