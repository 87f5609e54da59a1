package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrChangeDeliveryStatusCommandIsNotConstructed = errors.New(
	"ChangeDeliveryStatusCommand must be created via NewChangeDeliveryStatusCommand constructor",
)

// ChangeDeliveryStatusCommand represents a request to move a delivery to a
// new status. Carries only the delivery identity and the target status; the
// legality of the transition is decided by the aggregate.
//
// Example:
//
//	cmd, err := NewChangeDeliveryStatusCommand(deliveryID, delivery.PickedUp)
//	if err != nil {
//	    return fmt.Errorf("invalid status change request: %w", err)
//	}
//
//	handler := NewChangeDeliveryStatusCommandHandler(uowFactory, publisher, broadcaster, logger)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to change delivery status: %w", err)
//	}
type ChangeDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	target     delivery.Status

	guard guard.ConstructorGuard
}

// NewChangeDeliveryStatusCommand creates a command to change a delivery's status.
// Validates that the delivery ID is constructed and the target status is valid.
func NewChangeDeliveryStatusCommand(
	deliveryID kernel.UUID,
	target delivery.Status,
) (ChangeDeliveryStatusCommand, error) {
	command := ChangeDeliveryStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(deliveryID),
		command.setTarget(target),
	); err != nil {
		return ChangeDeliveryStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrChangeDeliveryStatusCommandIsNotConstructed if validation fails.
func (c ChangeDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeDeliveryStatusCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery to update.
func (c ChangeDeliveryStatusCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Target returns the requested status.
func (c ChangeDeliveryStatusCommand) Target() delivery.Status {
	return c.target
}

func (c *ChangeDeliveryStatusCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}

func (c *ChangeDeliveryStatusCommand) setTarget(target delivery.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}
