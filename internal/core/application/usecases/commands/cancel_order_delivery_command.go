package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCancelOrderDeliveryCommandIsNotConstructed = errors.New(
	"CancelOrderDeliveryCommand must be created via NewCancelOrderDeliveryCommand constructor",
)

// CancelOrderDeliveryCommand represents a request to cancel the delivery that
// belongs to an upstream order. Used by the message bridge, which only knows
// the order reference, not the internal delivery ID.
type CancelOrderDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

// NewCancelOrderDeliveryCommand creates a command to cancel an order's delivery.
// Validates that the order reference is not empty.
func NewCancelOrderDeliveryCommand(orderID string) (CancelOrderDeliveryCommand, error) {
	command := CancelOrderDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return CancelOrderDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCancelOrderDeliveryCommandIsNotConstructed if validation fails.
func (c CancelOrderDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderDeliveryCommandIsNotConstructed)
}

// OrderID returns the upstream order reference.
func (c CancelOrderDeliveryCommand) OrderID() string {
	return c.orderID
}

func (c *CancelOrderDeliveryCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}

	c.orderID = orderID
	return nil
}
