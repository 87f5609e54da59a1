package queries

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetDeliveryTrackingQueryHandler assembles the tracking view of a delivery:
// its current progress, the assigned driver's contact card and the full event
// history. The history is read straight from the tracking table: entries are
// insert-only, so chronological ordering by timestamp and insertion id is
// stable.
type GetDeliveryTrackingQueryHandler struct {
	db *gorm.DB
}

// NewGetDeliveryTrackingQueryHandler creates a handler for tracking lookups.
// Requires a GORM database connection for query execution.
func NewGetDeliveryTrackingQueryHandler(db *gorm.DB) GetDeliveryTrackingQueryHandler {
	return GetDeliveryTrackingQueryHandler{db: db}
}

// Handle executes the query.
// Returns *errs.ObjectNotFoundError when the delivery does not exist; an
// existing delivery always has at least its creation entry in the history.
func (h GetDeliveryTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryTrackingQuery,
) (DeliveryTrackingResponse, error) {
	if err := query.Validate(); err != nil {
		return DeliveryTrackingResponse{}, err
	}

	var response DeliveryTrackingResponse
	var driverID sql.NullString

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			status,
			current_latitude,
			current_longitude,
			estimated_delivery_time,
			driver_id
		FROM deliveries
		WHERE id = ?
	`, query.DeliveryID().String()).Row()

	err := row.Scan(
		&response.DeliveryID,
		&response.OrderID,
		&response.Status,
		&response.CurrentLatitude,
		&response.CurrentLongitude,
		&response.EstimatedDeliveryTime,
		&driverID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryTrackingResponse{}, errs.NewObjectNotFoundError(
			"deliveryID", query.DeliveryID().String())
	}
	if err != nil {
		return DeliveryTrackingResponse{}, err
	}

	if driverID.Valid {
		response.Driver, err = h.driverCard(ctx, driverID.String)
		if err != nil {
			return DeliveryTrackingResponse{}, err
		}
	}

	response.History, err = h.history(ctx, query.DeliveryID().String())
	if err != nil {
		return DeliveryTrackingResponse{}, err
	}

	return response, nil
}

// driverCard loads the assigned driver's contact details. A missing driver row
// for a recorded assignment is a data fault and surfaces as a not-found error.
func (h GetDeliveryTrackingQueryHandler) driverCard(
	ctx context.Context,
	driverID string,
) (*TrackingDriverResponse, error) {
	var card TrackingDriverResponse

	row := h.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, vehicle_type
		FROM drivers
		WHERE id = ?
	`, driverID).Row()

	err := row.Scan(&card.ID, &card.Name, &card.Phone, &card.VehicleType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("driverID", driverID)
	}
	if err != nil {
		return nil, err
	}

	return &card, nil
}

func (h GetDeliveryTrackingQueryHandler) history(
	ctx context.Context,
	deliveryID string,
) ([]TrackingEventResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			kind,
			description,
			latitude,
			longitude,
			occurred_at
		FROM tracking_events
		WHERE delivery_id = ?
		ORDER BY occurred_at, id
	`, deliveryID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]TrackingEventResponse, 0)
	for rows.Next() {
		var event TrackingEventResponse

		err = rows.Scan(
			&event.Kind,
			&event.Description,
			&event.Latitude,
			&event.Longitude,
			&event.OccurredAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
