package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetDeliveryTrackingQueryIsNotConstructed = errors.New(
	"GetDeliveryTrackingQuery must be created via NewGetDeliveryTrackingQuery constructor",
)

// GetDeliveryTrackingQuery retrieves the live tracking view of a delivery:
// its progress, the assigned driver and the full event history.
type GetDeliveryTrackingQuery struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetDeliveryTrackingQuery creates a tracking-history query.
// Validates that the delivery ID is constructed.
func NewGetDeliveryTrackingQuery(deliveryID kernel.UUID) (GetDeliveryTrackingQuery, error) {
	query := GetDeliveryTrackingQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setDeliveryID(deliveryID); err != nil {
		return GetDeliveryTrackingQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetDeliveryTrackingQueryIsNotConstructed if validation fails.
func (q GetDeliveryTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryTrackingQueryIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery being looked up.
func (q GetDeliveryTrackingQuery) DeliveryID() kernel.UUID {
	return q.deliveryID
}

func (q *GetDeliveryTrackingQuery) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	q.deliveryID = deliveryID
	return nil
}

// TrackingEventResponse is the read model for one tracking history entry.
type TrackingEventResponse struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TrackingDriverResponse is the assigned driver's contact card shown to the
// customer while a delivery is underway.
type TrackingDriverResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"`
}

// DeliveryTrackingResponse is the read model for the live tracking view:
// delivery progress, the assigned driver when there is one, and the full
// event history in chronological order.
type DeliveryTrackingResponse struct {
	DeliveryID            string                  `json:"delivery_id"`
	OrderID               string                  `json:"order_id"`
	Status                string                  `json:"status"`
	CurrentLatitude       *float64                `json:"current_latitude,omitempty"`
	CurrentLongitude      *float64                `json:"current_longitude,omitempty"`
	EstimatedDeliveryTime *time.Time              `json:"estimated_delivery_time,omitempty"`
	Driver                *TrackingDriverResponse `json:"driver,omitempty"`
	History               []TrackingEventResponse `json:"history"`
}
