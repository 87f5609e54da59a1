package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrListDeliveriesQueryIsNotConstructed = errors.New(
	"ListDeliveriesQuery must be created via NewListDeliveriesQuery constructor",
)

// MaxListLimit caps the page size of delivery listings.
const MaxListLimit = 100

// ListDeliveriesQuery retrieves deliveries, newest first, optionally filtered
// by status and assigned driver.
type ListDeliveriesQuery struct { //nolint:recvcheck //using for validation
	status   *delivery.Status
	driverID *kernel.UUID
	limit    int
	offset   int

	guard guard.ConstructorGuard
}

// NewListDeliveriesQuery creates a listing query.
// Nil status and driverID mean no filtering. A non-positive limit falls back
// to MaxListLimit, larger limits are clamped to it, and a negative offset is
// treated as zero.
func NewListDeliveriesQuery(
	status *delivery.Status,
	driverID *kernel.UUID,
	limit int,
	offset int,
) (ListDeliveriesQuery, error) {
	query := ListDeliveriesQuery{
		limit:  limit,
		offset: offset,
		guard:  guard.NewConstructorGuard(),
	}

	if status != nil {
		if err := status.Validate(); err != nil {
			return ListDeliveriesQuery{}, err
		}
		query.status = status
	}

	if driverID != nil {
		if err := driverID.Validate(); err != nil {
			return ListDeliveriesQuery{}, err
		}
		query.driverID = driverID
	}

	if query.limit <= 0 || query.limit > MaxListLimit {
		query.limit = MaxListLimit
	}
	if query.offset < 0 {
		query.offset = 0
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrListDeliveriesQueryIsNotConstructed if validation fails.
func (q ListDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrListDeliveriesQueryIsNotConstructed)
}

// Status returns the status filter, or nil for no filtering.
func (q ListDeliveriesQuery) Status() *delivery.Status {
	return q.status
}

// DriverID returns the assigned-driver filter, or nil for no filtering.
func (q ListDeliveriesQuery) DriverID() *kernel.UUID {
	return q.driverID
}

// Limit returns the effective page size.
func (q ListDeliveriesQuery) Limit() int {
	return q.limit
}

// Offset returns the number of deliveries to skip.
func (q ListDeliveriesQuery) Offset() int {
	return q.offset
}
