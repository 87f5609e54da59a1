package commands

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrMarkPaymentConfirmedCommandIsNotConstructed = errors.New(
	"MarkPaymentConfirmedCommand must be created via NewMarkPaymentConfirmedCommand constructor",
)

// MarkPaymentConfirmedCommand records that payment for an order succeeded.
// Payment confirmation is not a delivery status; it only annotates the
// tracking history of the order's delivery.
type MarkPaymentConfirmedCommand struct { //nolint:recvcheck //using for validation
	orderID string

	guard guard.ConstructorGuard
}

// NewMarkPaymentConfirmedCommand creates a command to record a payment confirmation.
// Validates that the order reference is not empty.
func NewMarkPaymentConfirmedCommand(orderID string) (MarkPaymentConfirmedCommand, error) {
	command := MarkPaymentConfirmedCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return MarkPaymentConfirmedCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrMarkPaymentConfirmedCommandIsNotConstructed if validation fails.
func (c MarkPaymentConfirmedCommand) Validate() error {
	return c.guard.Validate(ErrMarkPaymentConfirmedCommandIsNotConstructed)
}

// OrderID returns the upstream order reference.
func (c MarkPaymentConfirmedCommand) OrderID() string {
	return c.orderID
}

func (c *MarkPaymentConfirmedCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}

	c.orderID = orderID
	return nil
}
