package ports

import (
	"context"

	"delivery-schedule-service/internal/domain"
)

// Port: hand-off of a materialized occurrence to the order-creation
// collaborator. A dispatch failure never rolls the occurrence back;
// retrying is the downstream consumer's job.
type OrderDispatcher interface {
	Dispatch(ctx context.Context, occ domain.DeliveryOccurrence) error
}
