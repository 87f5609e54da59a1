package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverStatusCommandIsNotConstructed = errors.New(
	"UpdateDriverStatusCommand must be created via NewUpdateDriverStatusCommand constructor",
)

// UpdateDriverStatusCommand represents an operator's request to change a
// driver's availability (offline, available, on_break). Busy cannot be
// selected; it is managed by delivery reservations.
type UpdateDriverStatusCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	target   driver.Status

	guard guard.ConstructorGuard
}

// NewUpdateDriverStatusCommand creates a command to change a driver's availability.
// Validates that the driver ID is constructed and the target status is valid.
func NewUpdateDriverStatusCommand(
	driverID kernel.UUID,
	target driver.Status,
) (UpdateDriverStatusCommand, error) {
	command := UpdateDriverStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setTarget(target),
	); err != nil {
		return UpdateDriverStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateDriverStatusCommandIsNotConstructed if validation fails.
func (c UpdateDriverStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverStatusCommandIsNotConstructed)
}

// DriverID returns the identifier of the driver to update.
func (c UpdateDriverStatusCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Target returns the requested availability status.
func (c UpdateDriverStatusCommand) Target() driver.Status {
	return c.target
}

func (c *UpdateDriverStatusCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}

func (c *UpdateDriverStatusCommand) setTarget(target driver.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}
