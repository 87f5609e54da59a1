package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDeliveryLocationCommandIsNotConstructed = errors.New(
	"UpdateDeliveryLocationCommand must be created via NewUpdateDeliveryLocationCommand constructor",
)

// UpdateDeliveryLocationCommand represents a courier position report for a
// delivery. This is the high-frequency write path of the tracking pipeline.
type UpdateDeliveryLocationCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	location   kernel.Location

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryLocationCommand creates a command to record a position report.
func NewUpdateDeliveryLocationCommand(
	deliveryID kernel.UUID,
	location kernel.Location,
) (UpdateDeliveryLocationCommand, error) {
	command := UpdateDeliveryLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(deliveryID),
		command.setLocation(location),
	); err != nil {
		return UpdateDeliveryLocationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDeliveryLocationCommandIsNotConstructed if validation fails.
func (c UpdateDeliveryLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryLocationCommandIsNotConstructed)
}

// DeliveryID returns the identifier of the delivery being tracked.
func (c UpdateDeliveryLocationCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// Location returns the reported position.
func (c UpdateDeliveryLocationCommand) Location() kernel.Location {
	return c.location
}

func (c *UpdateDeliveryLocationCommand) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	c.deliveryID = deliveryID
	return nil
}

func (c *UpdateDeliveryLocationCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}
