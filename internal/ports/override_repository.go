package ports

import (
	"context"

	"delivery-schedule-service/internal/domain"
)

// Port: read-only access to manual zone overrides.
type OverrideRepository interface {
	// Return overrides scoped to one address, any state.
	ListForAddress(ctx context.Context, addressID int) ([]domain.ZoneOverride, error)
	// Return overrides scoped to one user, any state.
	ListForUser(ctx context.Context, userID int) ([]domain.ZoneOverride, error)
}
