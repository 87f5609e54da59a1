package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"
)

// Post-commit notification helpers shared by the command handlers.
// Publishing and broadcasting happen strictly after the transaction commits
// and are best effort: a transport failure never fails the command.

// publishEvent sends the integration event to the bus. The transaction has
// already committed, so a publish failure is logged and swallowed rather than
// surfaced to the caller.
func publishEvent(ctx context.Context, logger *slog.Logger, publisher ports.EventPublisher, event ports.DeliveryEvent) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("failed to publish delivery event",
			"event_kind", event.Kind, "delivery_id", event.DeliveryID, "error", err)
	}
}

func newDeliveryEvent(kind string, d *delivery.Delivery, occurredAt time.Time) ports.DeliveryEvent {
	event := ports.DeliveryEvent{
		Kind:       kind,
		DeliveryID: d.ID().String(),
		OrderID:    d.OrderID(),
		Status:     d.Status().String(),
		OccurredAt: occurredAt,
	}
	if driverID := d.Driver(); driverID != nil {
		id := driverID.String()
		event.DriverID = &id
	}
	return event
}

func newTrackingUpdate(kind, description string, d *delivery.Delivery, occurredAt time.Time) ports.TrackingUpdate {
	update := ports.TrackingUpdate{
		DeliveryID:  d.ID().String(),
		Kind:        kind,
		Status:      d.Status().String(),
		Description: description,
		OccurredAt:  occurredAt,
	}
	if location := d.CurrentLocation(); location != nil {
		latitude := location.Latitude()
		longitude := location.Longitude()
		update.Latitude = &latitude
		update.Longitude = &longitude
	}
	return update
}
