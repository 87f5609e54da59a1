package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRegisterDriverCommandIsNotConstructed = errors.New(
	"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
)

// RegisterDriverCommand represents a request to register a new driver.
// New drivers start offline and must go available before being matched.
//
// Example:
//
//	cmd, err := NewRegisterDriverCommand(kernel.NewUUID(), "Alice", "+15550001111", "alice@example.com", "bike")
//	if err != nil {
//	    return fmt.Errorf("invalid driver data: %w", err)
//	}
//
//	handler := NewRegisterDriverCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to register driver: %w", err)
//	}
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	driverID    kernel.UUID
	name        string
	phone       string
	email       string
	vehicleType string

	guard guard.ConstructorGuard
}

// NewRegisterDriverCommand creates a command to register a driver.
// Validates that the driver ID is constructed and the profile fields are not empty.
func NewRegisterDriverCommand(
	driverID kernel.UUID,
	name, phone, email, vehicleType string,
) (RegisterDriverCommand, error) {
	command := RegisterDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setName(name),
		command.setPhone(phone),
		command.setEmail(email),
		command.setVehicleType(vehicleType),
	); err != nil {
		return RegisterDriverCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRegisterDriverCommandIsNotConstructed if validation fails.
func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

// DriverID returns the identifier assigned to the new driver.
func (c RegisterDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Name returns the driver's display name.
func (c RegisterDriverCommand) Name() string {
	return c.name
}

// Phone returns the driver's contact phone number.
func (c RegisterDriverCommand) Phone() string {
	return c.phone
}

// Email returns the driver's contact email.
func (c RegisterDriverCommand) Email() string {
	return c.email
}

// VehicleType returns the vehicle the driver operates.
func (c RegisterDriverCommand) VehicleType() string {
	return c.vehicleType
}

func (c *RegisterDriverCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}

func (c *RegisterDriverCommand) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}

	c.name = name
	return nil
}

func (c *RegisterDriverCommand) setPhone(phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}

	c.phone = phone
	return nil
}

func (c *RegisterDriverCommand) setEmail(email string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}

	c.email = email
	return nil
}

func (c *RegisterDriverCommand) setVehicleType(vehicleType string) error {
	if vehicleType == "" {
		return errs.NewValueIsRequiredError("vehicleType")
	}

	c.vehicleType = vehicleType
	return nil
}
