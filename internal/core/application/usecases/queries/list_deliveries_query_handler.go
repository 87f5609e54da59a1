package queries

import (
	"context"

	"gorm.io/gorm"
)

// ListDeliveriesQueryHandler retrieves pages of deliveries from the database.
type ListDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewListDeliveriesQueryHandler creates a handler for delivery listings.
// Requires a GORM database connection for query execution.
func NewListDeliveriesQueryHandler(db *gorm.DB) ListDeliveriesQueryHandler {
	return ListDeliveriesQueryHandler{db: db}
}

// Handle executes the listing query.
// Returns deliveries newest first, filtered by status and assigned driver
// when set.
func (h ListDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query ListDeliveriesQuery,
) ([]DeliveryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sqlQuery := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE TRUE`
	args := make([]any, 0, 4)
	if status := query.Status(); status != nil {
		sqlQuery += ` AND status = ?`
		args = append(args, status.String())
	}
	if driverID := query.DriverID(); driverID != nil {
		sqlQuery += ` AND driver_id = ?`
		args = append(args, driverID.Bytes())
	}
	sqlQuery += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, query.Limit(), query.Offset())

	rows, err := h.db.WithContext(ctx).Raw(sqlQuery, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]DeliveryResponse, 0)
	for rows.Next() {
		response, scanErr := scanDeliveryRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		deliveries = append(deliveries, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
