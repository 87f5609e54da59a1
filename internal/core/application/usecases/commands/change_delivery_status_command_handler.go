package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"
)

// ChangeDeliveryStatusCommandHandler applies status transitions to deliveries
// together with their side effects: fulfillment timestamp stamps, the
// tracking-history entry, and releasing the driver's reservation when a
// terminal status is reached. All writes happen in one transaction.
//
// Example:
//
//	handler := NewChangeDeliveryStatusCommandHandler(uowFactory, publisher, broadcaster, logger)
//	cmd, _ := NewChangeDeliveryStatusCommand(deliveryID, delivery.Delivered)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, delivery.ErrIllegalTransition) {
//	    log.Println("Delivery already reached a terminal status")
//	}
type ChangeDeliveryStatusCommandHandler struct {
	uowFactory  UoWFactory
	publisher   ports.EventPublisher
	broadcaster ports.TrackingBroadcaster
	logger      *slog.Logger
}

// NewChangeDeliveryStatusCommandHandler creates a handler for delivery status transitions.
func NewChangeDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	broadcaster ports.TrackingBroadcaster,
	logger *slog.Logger,
) ChangeDeliveryStatusCommandHandler {
	return ChangeDeliveryStatusCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Handle processes the status change command.
// Loads the delivery, applies the transition through the aggregate, performs
// the registry side effects, and commits. After the commit it publishes the
// matching integration event and pushes the update to live subscribers.
// Returns delivery.ErrIllegalTransition (wrapped) for rejected transitions and
// *errs.ObjectNotFoundError when the delivery does not exist.
func (h ChangeDeliveryStatusCommandHandler) Handle(ctx context.Context, command ChangeDeliveryStatusCommand) error {
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

	aggregate, err := uow.DeliveryRepository().GetForUpdate(ctx, command.DeliveryID())
	if err != nil {
		return err
	}

	if err = applyStatusTransition(ctx, uow, aggregate, command.Target(), now); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifyStatusChanged(ctx, aggregate, now)
	return nil
}

func (h ChangeDeliveryStatusCommandHandler) notifyStatusChanged(
	ctx context.Context,
	d *delivery.Delivery,
	now time.Time,
) {
	kind := ports.EventKindStatusChanged
	if d.Status() == delivery.Cancelled {
		kind = ports.EventKindCancelled
	}
	publishEvent(ctx, h.logger, h.publisher, newDeliveryEvent(kind, d, now))

	h.broadcaster.Broadcast(newTrackingUpdate(d.Status().String(), d.Status().Description(), d, now))
}

// applyStatusTransition runs the transition against the aggregate and carries
// out its registry side effects inside the caller's transaction: terminal
// statuses release the driver's reservation, and a successful delivery bumps
// the driver's completed count. Shared by the status change and order
// cancellation handlers.
func applyStatusTransition(
	ctx context.Context,
	uow UoW,
	aggregate *delivery.Delivery,
	target delivery.Status,
	now time.Time,
) error {
	if err := aggregate.TransitionTo(target, now); err != nil {
		return err
	}

	if driverID := aggregate.Driver(); driverID != nil && target.ReleasesDriver() {
		driverRepo := uow.DriverRepository()

		if err := driverRepo.Release(ctx, *driverID); err != nil {
			return err
		}

		if target == delivery.Delivered {
			assignedDriver, err := driverRepo.Get(ctx, *driverID)
			if err != nil {
				return err
			}
			assignedDriver.RecordCompletedDelivery(now)
			if err = driverRepo.Update(ctx, assignedDriver); err != nil {
				return err
			}
		}
	}

	return uow.DeliveryRepository().Update(ctx, aggregate)
}
