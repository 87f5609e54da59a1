package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"
)

// CancelOrderDeliveryCommandHandler cancels the delivery created for an
// upstream order. It resolves the delivery by order reference and applies the
// cancellation transition with the same side effects as a direct status
// change, including releasing a reserved driver.
//
// A delivery already in a terminal status surfaces as
// delivery.ErrIllegalTransition, which the bridge treats as a redelivered
// message.
type CancelOrderDeliveryCommandHandler struct {
	uowFactory  UoWFactory
	publisher   ports.EventPublisher
	broadcaster ports.TrackingBroadcaster
	logger      *slog.Logger
}

// NewCancelOrderDeliveryCommandHandler creates a handler for order-driven cancellations.
func NewCancelOrderDeliveryCommandHandler(
	uowFactory UoWFactory,
	publisher ports.EventPublisher,
	broadcaster ports.TrackingBroadcaster,
	logger *slog.Logger,
) CancelOrderDeliveryCommandHandler {
	return CancelOrderDeliveryCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Handle processes the cancellation command.
// Returns *errs.ObjectNotFoundError when no delivery exists for the order.
func (h CancelOrderDeliveryCommandHandler) Handle(ctx context.Context, command CancelOrderDeliveryCommand) error {
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

	aggregate, err := uow.DeliveryRepository().GetByOrderForUpdate(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = applyStatusTransition(ctx, uow, aggregate, delivery.Cancelled, now); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishEvent(ctx, h.logger, h.publisher, newDeliveryEvent(ports.EventKindCancelled, aggregate, now))
	h.broadcaster.Broadcast(newTrackingUpdate(
		delivery.Cancelled.String(), delivery.Cancelled.Description(), aggregate, now))

	return nil
}
