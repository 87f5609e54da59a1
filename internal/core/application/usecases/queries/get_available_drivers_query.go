package queries

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrGetAvailableDriversQueryIsNotConstructed = errors.New(
	"GetAvailableDriversQuery must be created via NewGetAvailableDriversQuery constructor",
)

// GetAvailableDriversQuery retrieves all active drivers currently available
// for matching.
//
// Example:
//
//	query := NewGetAvailableDriversQuery()
//	handler := NewGetAvailableDriversQueryHandler(db)
//
//	drivers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve drivers: %w", err)
//	}
type GetAvailableDriversQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableDriversQuery creates a query to retrieve available drivers.
// This is a parameterless query that fetches the current matching pool.
func NewGetAvailableDriversQuery() GetAvailableDriversQuery {
	return GetAvailableDriversQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetAvailableDriversQueryIsNotConstructed if validation fails.
func (q GetAvailableDriversQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableDriversQueryIsNotConstructed)
}

// DriverResponse represents driver information in the read model.
type DriverResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	VehicleType     string   `json:"vehicle_type"`
	Status          string   `json:"status"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Rating          float64  `json:"rating"`
	TotalDeliveries int      `json:"total_deliveries"`
}
