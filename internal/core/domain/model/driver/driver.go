package driver

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// RatingMin is the lowest driver rating.
	RatingMin = 0.0
	// RatingMax is the highest driver rating.
	RatingMax = 5.0

	// defaultRating is assigned to newly registered drivers.
	defaultRating = 5.0
)

var (
	// ErrDriverIsNotConstructed is returned when a Driver instance was not created
	// through the NewDriver or RestoreDriver factory methods.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")

	// ErrDriverNotReservable is returned by Reserve when the driver is not
	// available, including when it already holds a reservation.
	ErrDriverNotReservable = errors.New("driver is not available for reservation")

	// ErrDriverIsBusy is returned when an operator tries to change the status
	// of a driver holding an active reservation.
	ErrDriverIsBusy = errors.New("driver holds an active delivery reservation")
)

// Driver is the aggregate root for a courier registered in the dispatch system.
// It tracks the profile, availability status, live position and delivery stats.
//
// Invariants:
//   - currentDeliveryID is non-nil if and only if status is Busy
//   - rating stays within [RatingMin, RatingMax]
//   - Busy is entered only through Reserve and left only through Release
//   - can only be created through NewDriver or RestoreDriver
type Driver struct {
	id          kernel.UUID
	name        string
	phone       string
	email       string
	vehicleType string

	status            Status
	currentLocation   *kernel.Location
	currentDeliveryID *kernel.UUID

	rating          float64
	totalDeliveries int
	isActive        bool

	createdAt time.Time
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewDriver registers a driver. New drivers start Offline and must explicitly
// go available before they can be matched.
func NewDriver(id kernel.UUID, name, phone, email, vehicleType string, now time.Time) (*Driver, error) {
	d := &Driver{
		status:    Offline,
		rating:    defaultRating,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPhone(phone),
		d.setEmail(email),
		d.setVehicleType(vehicleType),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreParams carries the persisted state needed to reconstruct a Driver.
type RestoreParams struct {
	ID          kernel.UUID
	Name        string
	Phone       string
	Email       string
	VehicleType string

	Status            Status
	CurrentLocation   *kernel.Location
	CurrentDeliveryID *kernel.UUID

	Rating          float64
	TotalDeliveries int
	IsActive        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage.
func RestoreDriver(p RestoreParams) (*Driver, error) {
	d := &Driver{
		status:            p.Status,
		currentLocation:   p.CurrentLocation,
		currentDeliveryID: p.CurrentDeliveryID,
		totalDeliveries:   p.TotalDeliveries,
		isActive:          p.IsActive,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(p.ID),
		d.setName(p.Name),
		d.setPhone(p.Phone),
		d.setEmail(p.Email),
		d.setVehicleType(p.VehicleType),
		d.setRating(p.Rating),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if p.CurrentLocation != nil {
		if err := p.CurrentLocation.Validate(); err != nil {
			return nil, err
		}
	}
	if p.CurrentDeliveryID != nil {
		if err := p.CurrentDeliveryID.Validate(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Validate ensures the Driver was properly constructed through a factory method.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the driver's unique identifier.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the driver's display name.
func (d *Driver) Name() string {
	return d.name
}

// Phone returns the driver's contact phone number.
func (d *Driver) Phone() string {
	return d.phone
}

// Email returns the driver's contact email.
func (d *Driver) Email() string {
	return d.email
}

// VehicleType returns the vehicle the driver operates ("bike", "car", ...).
func (d *Driver) VehicleType() string {
	return d.vehicleType
}

// Status returns the driver's availability status.
func (d *Driver) Status() Status {
	return d.status
}

// CurrentLocation returns the driver's last reported position, or nil.
func (d *Driver) CurrentLocation() *kernel.Location {
	return d.currentLocation
}

// CurrentDelivery returns the ID of the delivery the driver is reserved for,
// or nil when the driver holds no reservation.
func (d *Driver) CurrentDelivery() *kernel.UUID {
	return d.currentDeliveryID
}

// Rating returns the driver's rating within [RatingMin, RatingMax].
func (d *Driver) Rating() float64 {
	return d.rating
}

// TotalDeliveries returns the number of completed deliveries.
func (d *Driver) TotalDeliveries() int {
	return d.totalDeliveries
}

// IsActive reports whether the driver's account is active.
func (d *Driver) IsActive() bool {
	return d.isActive
}

// CreatedAt returns the registration time of the driver.
func (d *Driver) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns the time of the last mutation.
func (d *Driver) UpdatedAt() time.Time {
	return d.updatedAt
}

// IsMatchable reports whether the driver may be considered by the matching
// strategy: active, available and with a known position.
func (d *Driver) IsMatchable() bool {
	return d.isActive && d.status == Available && d.currentLocation != nil
}

// Reserve claims the driver for a delivery, moving it to Busy. Only an
// available driver can be reserved; everything else returns
// ErrDriverNotReservable so the caller can fall back to the next candidate.
//
// In-memory reservation mirrors the registry's conditional-update claim: the
// store performs the atomic compare-and-set, this method keeps the aggregate
// consistent with it.
func (d *Driver) Reserve(deliveryID kernel.UUID, now time.Time) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}
	if d.status != Available {
		return fmt.Errorf("%w: driver %s is %s", ErrDriverNotReservable, d.id, d.status)
	}

	d.status = Busy
	d.currentDeliveryID = &deliveryID
	d.updatedAt = now
	return nil
}

// Release drops the driver's reservation, returning it to Available.
// Releasing a driver that holds no reservation is a no-op, which makes
// redelivered terminal transitions safe.
func (d *Driver) Release(now time.Time) {
	if d.status != Busy {
		return
	}
	d.status = Available
	d.currentDeliveryID = nil
	d.updatedAt = now
}

// RecordCompletedDelivery increments the completed-deliveries counter.
func (d *Driver) RecordCompletedDelivery(now time.Time) {
	d.totalDeliveries++
	d.updatedAt = now
}

// ChangeStatus applies an operator-selected status (offline, available,
// on_break). Busy cannot be selected, and a driver holding a reservation
// cannot be moved until the reservation is released.
func (d *Driver) ChangeStatus(target Status, now time.Time) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if !target.IsSelectable() {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%s can only be entered through a delivery reservation", target))
	}
	if d.status == Busy {
		return fmt.Errorf("%w: driver %s", ErrDriverIsBusy, d.id)
	}

	d.status = target
	d.updatedAt = now
	return nil
}

// UpdateLocation records the driver's latest reported position.
func (d *Driver) UpdateLocation(location kernel.Location, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	d.currentLocation = &location
	d.updatedAt = now
	return nil
}

// SetRating replaces the driver's rating.
func (d *Driver) SetRating(rating float64, now time.Time) error {
	if err := d.setRating(rating); err != nil {
		return err
	}
	d.updatedAt = now
	return nil
}

// Deactivate marks the driver's account inactive. Inactive drivers are never
// matched, regardless of status.
func (d *Driver) Deactivate(now time.Time) {
	d.isActive = false
	d.updatedAt = now
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	d.name = name
	return nil
}

func (d *Driver) setPhone(phone string) error {
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	d.phone = phone
	return nil
}

func (d *Driver) setEmail(email string) error {
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	d.email = email
	return nil
}

func (d *Driver) setVehicleType(vehicleType string) error {
	if vehicleType == "" {
		return errs.NewValueIsRequiredError("vehicleType")
	}
	d.vehicleType = vehicleType
	return nil
}

func (d *Driver) setRating(rating float64) error {
	if rating < RatingMin || rating > RatingMax {
		return errs.NewValueIsOutOfRangeError("rating", rating, RatingMin, RatingMax)
	}
	d.rating = rating
	return nil
}
