package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetAvailableDriversQueryHandler retrieves the current matching pool.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
type GetAvailableDriversQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableDriversQueryHandler creates a handler for driver pool queries.
// Requires a GORM database connection for query execution.
func NewGetAvailableDriversQueryHandler(db *gorm.DB) GetAvailableDriversQueryHandler {
	return GetAvailableDriversQueryHandler{db: db}
}

// Handle executes the query to retrieve all available drivers.
// Returns a slice of driver read models sorted by name.
func (h GetAvailableDriversQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableDriversQuery,
) ([]DriverResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			vehicle_type,
			status,
			latitude,
			longitude,
			rating,
			total_deliveries
		FROM drivers
		WHERE status = 'available' AND is_active
		ORDER BY name
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]DriverResponse, 0)
	for rows.Next() {
		var response DriverResponse

		err = rows.Scan(
			&response.ID,
			&response.Name,
			&response.VehicleType,
			&response.Status,
			&response.Latitude,
			&response.Longitude,
			&response.Rating,
			&response.TotalDeliveries,
		)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}
