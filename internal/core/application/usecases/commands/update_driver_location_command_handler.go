package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// UpdateDriverLocationCommandHandler records driver position reports.
// A report from a reserved driver also advances the tracked location of the
// delivery it is reserved for, so subscribers of that delivery see the driver
// move without a separate per-delivery report.
type UpdateDriverLocationCommandHandler struct {
	uowFactory  UoWFactory
	broadcaster ports.TrackingBroadcaster
}

// NewUpdateDriverLocationCommandHandler creates a handler for driver position reports.
func NewUpdateDriverLocationCommandHandler(
	uowFactory UoWFactory,
	broadcaster ports.TrackingBroadcaster,
) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

// Handle processes the driver position report.
// Returns *errs.ObjectNotFoundError when the driver does not exist.
func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, command UpdateDriverLocationCommand) error {
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

	driverRepo := uow.DriverRepository()

	aggregate, err := driverRepo.Get(ctx, command.DriverID())
	if err != nil {
		return err
	}

	if err = aggregate.UpdateLocation(command.Location(), now); err != nil {
		return err
	}

	if err = driverRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	trackedDelivery, err := h.advanceDeliveryLocation(ctx, uow, aggregate.CurrentDelivery(), command, now)
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if trackedDelivery != nil {
		h.broadcaster.Broadcast(newTrackingUpdate(
			delivery.TrackingEventLocationUpdate, "Location updated", trackedDelivery, now))
	}
	return nil
}

func (h UpdateDriverLocationCommandHandler) advanceDeliveryLocation(
	ctx context.Context,
	uow UoW,
	deliveryID *kernel.UUID,
	command UpdateDriverLocationCommand,
	now time.Time,
) (*delivery.Delivery, error) {
	if deliveryID == nil {
		return nil, nil
	}

	deliveryRepo := uow.DeliveryRepository()

	trackedDelivery, err := deliveryRepo.GetForUpdate(ctx, *deliveryID)
	if err != nil {
		return nil, err
	}

	if err = trackedDelivery.UpdateCurrentLocation(command.Location(), now); err != nil {
		return nil, err
	}

	if err = deliveryRepo.Update(ctx, trackedDelivery); err != nil {
		return nil, err
	}

	return trackedDelivery, nil
}
