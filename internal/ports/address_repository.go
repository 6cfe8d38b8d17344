package ports

import (
	"context"

	"delivery-schedule-service/internal/domain"
)

// Port: read-only access to customer addresses.
type AddressRepository interface {
	GetAddress(ctx context.Context, addressID int) (domain.Address, error)
}
