package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"
)

// UpdateDeliveryLocationCommandHandler records courier position reports on a
// delivery and fans them out to live-tracking subscribers. No integration
// event is published for position reports; only WebSocket subscribers care.
type UpdateDeliveryLocationCommandHandler struct {
	uowFactory  DeliveryUoWFactory
	broadcaster ports.TrackingBroadcaster
}

// NewUpdateDeliveryLocationCommandHandler creates a handler for position reports.
func NewUpdateDeliveryLocationCommandHandler(
	uowFactory DeliveryUoWFactory,
	broadcaster ports.TrackingBroadcaster,
) UpdateDeliveryLocationCommandHandler {
	return UpdateDeliveryLocationCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

// Handle processes the position report.
// Updates the delivery's location snapshot, appends the tracking entry, and
// pushes the update to subscribers after the commit.
func (h UpdateDeliveryLocationCommandHandler) Handle(ctx context.Context, command UpdateDeliveryLocationCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	aggregate, err := deliveryRepo.GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return err
	}

	if err = aggregate.UpdateCurrentLocation(command.Location(), now); err != nil {
		return err
	}

	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.broadcaster.Broadcast(newTrackingUpdate(
		delivery.TrackingEventLocationUpdate, "Location updated", aggregate, now))

	return nil
}
