package queries

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrGetStatisticsQueryIsNotConstructed = errors.New(
	"GetStatisticsQuery must be created via NewGetStatisticsQuery constructor",
)

// GetStatisticsQuery retrieves operational counters for the dispatch system.
type GetStatisticsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetStatisticsQuery creates a statistics query.
// This is a parameterless query that aggregates the current system state.
func NewGetStatisticsQuery() GetStatisticsQuery {
	return GetStatisticsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetStatisticsQueryIsNotConstructed if validation fails.
func (q GetStatisticsQuery) Validate() error {
	return q.guard.Validate(ErrGetStatisticsQueryIsNotConstructed)
}

// StatisticsResponse aggregates delivery and driver counters.
// AverageDeliveryMinutes and CompletionRate are zero when nothing has been
// delivered yet.
type StatisticsResponse struct {
	TotalDeliveries        int     `json:"total_deliveries"`
	PendingDeliveries      int     `json:"pending_deliveries"`
	ActiveDeliveries       int     `json:"active_deliveries"`
	CompletedDeliveries    int     `json:"completed_deliveries"`
	CancelledDeliveries    int     `json:"cancelled_deliveries"`
	FailedDeliveries       int     `json:"failed_deliveries"`
	AvailableDrivers       int     `json:"available_drivers"`
	BusyDrivers            int     `json:"busy_drivers"`
	AverageDeliveryMinutes float64 `json:"average_delivery_minutes"`
	CompletionRate         float64 `json:"completion_rate"`
}
