package queries

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// GetStatisticsQueryHandler aggregates operational counters in a single
// round trip per table.
type GetStatisticsQueryHandler struct {
	db *gorm.DB
}

// NewGetStatisticsQueryHandler creates a handler for statistics queries.
// Requires a GORM database connection for query execution.
func NewGetStatisticsQueryHandler(db *gorm.DB) GetStatisticsQueryHandler {
	return GetStatisticsQueryHandler{db: db}
}

// completionRate is the delivered share of all deliveries as a percentage.
// With no deliveries recorded it reports zero instead of dividing by zero.
func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Handle executes the statistics aggregation.
// The average delivery duration only considers delivered deliveries; with
// none delivered yet it reports zero instead of dividing by zero.
func (h GetStatisticsQueryHandler) Handle(
	ctx context.Context,
	query GetStatisticsQuery,
) (StatisticsResponse, error) {
	if err := query.Validate(); err != nil {
		return StatisticsResponse{}, err
	}

	var response StatisticsResponse
	var averageMinutes sql.NullFloat64

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status IN ('assigned', 'picked_up', 'on_the_way')),
			COUNT(*) FILTER (WHERE status = 'delivered'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			AVG(EXTRACT(EPOCH FROM (actual_delivery_time - created_at)) / 60.0)
				FILTER (WHERE status = 'delivered' AND actual_delivery_time IS NOT NULL)
		FROM deliveries
	`).Row()

	err := row.Scan(
		&response.TotalDeliveries,
		&response.PendingDeliveries,
		&response.ActiveDeliveries,
		&response.CompletedDeliveries,
		&response.CancelledDeliveries,
		&response.FailedDeliveries,
		&averageMinutes,
	)
	if err != nil {
		return StatisticsResponse{}, err
	}

	if averageMinutes.Valid {
		response.AverageDeliveryMinutes = averageMinutes.Float64
	}
	response.CompletionRate = completionRate(response.CompletedDeliveries, response.TotalDeliveries)

	row = h.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) FILTER (WHERE status = 'available'),
			COUNT(*) FILTER (WHERE status = 'busy')
		FROM drivers
		WHERE is_active
	`).Row()

	err = row.Scan(&response.AvailableDrivers, &response.BusyDrivers)
	if err != nil {
		return StatisticsResponse{}, err
	}

	return response, nil
}
