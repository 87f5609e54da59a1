package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrDriverAlreadyReserved is returned by Claim when the driver was no longer
// available at commit time, typically because a concurrent dispatch won the
// claim first. Callers fall through to the next ranked candidate.
var ErrDriverAlreadyReserved = errors.New("driver already reserved")

// DriverRepository defines the persistence contract for driver aggregates.
// Not-found conditions are reported as *errs.ObjectNotFoundError.
type DriverRepository interface {
	// Add persists a new driver aggregate to storage.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists changes to an existing driver aggregate.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAllAvailable retrieves all active drivers in the available status.
	// These are the candidates handed to the matching strategy.
	GetAllAvailable(ctx context.Context) ([]*driver.Driver, error)

	// Claim atomically reserves an available driver for a delivery: the
	// status moves to busy and the delivery reference is recorded in one
	// conditional write. Returns ErrDriverAlreadyReserved when the driver
	// was not available anymore, closing the race between reading the
	// candidate list and reserving a driver from it.
	Claim(ctx context.Context, driverID kernel.UUID, deliveryID kernel.UUID) error

	// Release drops a driver's reservation, returning it to available.
	// Releasing a driver that holds no reservation is a no-op.
	Release(ctx context.Context, driverID kernel.UUID) error
}
