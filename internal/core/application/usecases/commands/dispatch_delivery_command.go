package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrDispatchDeliveryCommandIsNotConstructed = errors.New(
	"DispatchDeliveryCommand must be created via NewDispatchDeliveryCommand constructor",
)

// DispatchDeliveryCommand represents a request to create a delivery for a
// confirmed order and match it with the nearest available driver.
// The delivery ID is supplied by the caller so the operation stays idempotent
// at the transport layer.
//
// Example:
//
//	cmd, err := NewDispatchDeliveryCommand(kernel.NewUUID(), "ord-17", "cus-3", "res-9", pickup, dropoff)
//	if err != nil {
//	    return fmt.Errorf("invalid dispatch request: %w", err)
//	}
//
//	handler := NewDispatchDeliveryCommandHandler(uowFactory, matcher, publisher, broadcaster, logger)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to dispatch delivery: %w", err)
//	}
type DispatchDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID   kernel.UUID
	orderID      string
	customerID   string
	restaurantID string

	pickupAddress   kernel.Address
	deliveryAddress kernel.Address

	guard guard.ConstructorGuard
}

// NewDispatchDeliveryCommand creates a command to dispatch a delivery for an order.
// Validates that the delivery ID and addresses are constructed and that the
// upstream references are not empty.
func NewDispatchDeliveryCommand(
	deliveryID kernel.UUID,
	orderID, customerID, restaurantID string,
	pickupAddress, deliveryAddress kernel.Address,
) (DispatchDeliveryCommand, error) {
	command := DispatchDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(deliveryID),
		command.setOrderID(orderID),
		command.setCustomerID(customerID),
		command.setRestaurantID(restaurantID),
		command.setPickupAddress(pickupAddress),
		command.setDeliveryAddress(deliveryAddress),
	); err != nil {
		return DispatchDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrDispatchDeliveryCommandIsNotConstructed if validation fails.
func (c DispatchDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrDispatchDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the identifier assigned to the new delivery.
func (c DispatchDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// OrderID returns the upstream order reference.
func (c DispatchDeliveryCommand) OrderID() string {
	return c.orderID
}

// CustomerID returns the upstream customer reference.
func (c DispatchDeliveryCommand) CustomerID() string {
	return c.customerID
}

// RestaurantID returns the upstream restaurant reference.
func (c DispatchDeliveryCommand) RestaurantID() string {
	return c.restaurantID
}

// PickupAddress returns the restaurant pickup address.
func (c DispatchDeliveryCommand) PickupAddress() kernel.Address {
	return c.pickupAddress
}

// DeliveryAddress returns the customer dropoff address.
func (c DispatchDeliveryCommand) DeliveryAddress() kernel.Address {
	return c.deliveryAddress
}

func (c *DispatchDeliveryCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}

func (c *DispatchDeliveryCommand) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}

	c.orderID = orderID
	return nil
}

func (c *DispatchDeliveryCommand) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerID")
	}

	c.customerID = customerID
	return nil
}

func (c *DispatchDeliveryCommand) setRestaurantID(restaurantID string) error {
	if restaurantID == "" {
		return errs.NewValueIsRequiredError("restaurantID")
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *DispatchDeliveryCommand) setPickupAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.pickupAddress = address
	return nil
}

func (c *DispatchDeliveryCommand) setDeliveryAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}

	c.deliveryAddress = address
	return nil
}
