package kernel

import (
	"errors"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when attempting to use an improperly initialized Address.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"address must be created via NewAddress constructor")

// Address represents a postal address with its geographic coordinates.
// Pickup and delivery addresses on a delivery record both use this value object.
// Address is immutable; the zero value is invalid and fails validation.
type Address struct { //nolint:recvcheck //using for validation
	street      string
	city        string
	state       string
	zipCode     string
	coordinates Location
	guard       guard.ConstructorGuard
}

// NewAddress creates a new Address.
// Street and city must be non-empty and the coordinates must be a properly
// constructed Location. State and zip code are optional free-form fields.
func NewAddress(street, city, state, zipCode string, coordinates Location) (Address, error) {
	addr := Address{
		state:   state,
		zipCode: zipCode,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		addr.setStreet(street),
		addr.setCity(city),
		addr.setCoordinates(coordinates),
	); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// Validate checks if the Address was properly constructed using the constructor.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

// Street returns the street line of the address.
func (a Address) Street() string {
	return a.street
}

// City returns the city of the address.
func (a Address) City() string {
	return a.city
}

// State returns the state or region of the address. May be empty.
func (a Address) State() string {
	return a.state
}

// ZipCode returns the postal code of the address. May be empty.
func (a Address) ZipCode() string {
	return a.zipCode
}

// Coordinates returns the geographic location of the address.
func (a Address) Coordinates() Location {
	return a.coordinates
}

func (a *Address) setStreet(street string) error {
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	a.street = street
	return nil
}

func (a *Address) setCity(city string) error {
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = city
	return nil
}

func (a *Address) setCoordinates(coordinates Location) error {
	if err := coordinates.Validate(); err != nil {
		return err
	}
	a.coordinates = coordinates
	return nil
}
