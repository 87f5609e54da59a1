package ports

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// DeliveryFilter narrows List results. Zero value means no filtering.
type DeliveryFilter struct {
	// Status restricts results to a single delivery status.
	Status *delivery.Status

	// DriverID restricts results to deliveries assigned to one driver.
	DriverID *kernel.UUID

	// Limit caps the number of returned deliveries. Zero means no cap.
	Limit int

	// Offset skips that many deliveries from the start of the result.
	Offset int
}

// DeliveryRepository defines the persistence contract for delivery aggregates.
// Not-found conditions are reported as *errs.ObjectNotFoundError so handlers
// can map them uniformly.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate, including its initial
	// tracking history.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate and appends
	// any new tracking entries. Existing history rows are never modified.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery by its unique identifier, with its full
	// tracking history in chronological order.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetForUpdate retrieves a delivery like Get while holding a write lock
	// on its row until the surrounding transaction ends. Mutating handlers
	// load through this so that transitions on the same delivery are
	// serialized and never overwrite each other's side effects.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetByOrder retrieves the delivery created for an upstream order.
	GetByOrder(ctx context.Context, orderID string) (*delivery.Delivery, error)

	// GetByOrderForUpdate is GetByOrder with the row lock of GetForUpdate.
	GetByOrderForUpdate(ctx context.Context, orderID string) (*delivery.Delivery, error)

	// List retrieves deliveries matching the filter, newest first.
	List(ctx context.Context, filter DeliveryFilter) ([]*delivery.Delivery, error)

	// GetAllPending retrieves deliveries still waiting for a driver,
	// oldest first. Used by the redispatch job.
	GetAllPending(ctx context.Context) ([]*delivery.Delivery, error)
}
