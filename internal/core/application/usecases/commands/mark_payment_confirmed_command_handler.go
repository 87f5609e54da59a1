package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/ports"
)

// MarkPaymentConfirmedCommandHandler appends the payment-confirmed tracking
// marker to the delivery of an order. The delivery status is untouched.
type MarkPaymentConfirmedCommandHandler struct {
	uowFactory  DeliveryUoWFactory
	broadcaster ports.TrackingBroadcaster
}

// NewMarkPaymentConfirmedCommandHandler creates a handler for payment confirmations.
func NewMarkPaymentConfirmedCommandHandler(
	uowFactory DeliveryUoWFactory,
	broadcaster ports.TrackingBroadcaster,
) MarkPaymentConfirmedCommandHandler {
	return MarkPaymentConfirmedCommandHandler{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
	}
}

// Handle processes the payment confirmation.
// Returns *errs.ObjectNotFoundError when no delivery exists for the order.
func (h MarkPaymentConfirmedCommandHandler) Handle(ctx context.Context, command MarkPaymentConfirmedCommand) error {
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

	aggregate, err := deliveryRepo.GetByOrderForUpdate(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.RecordPaymentConfirmed(now); err != nil {
		return err
	}

	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.broadcaster.Broadcast(newTrackingUpdate(
		delivery.TrackingEventPaymentConfirmed, "Payment confirmed for order", aggregate, now))

	return nil
}
