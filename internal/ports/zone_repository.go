package ports

import (
	"context"

	"delivery-schedule-service/internal/domain"
)

// Port: read-only access to zone reference data.
type ZoneRepository interface {
	// Return every active zone as an immutable snapshot for one run.
	ListActiveZones(ctx context.Context) ([]domain.Zone, error)
}
