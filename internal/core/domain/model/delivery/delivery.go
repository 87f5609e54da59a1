package delivery

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not created
	// through the NewDelivery or RestoreDelivery factory methods.
	ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

	// ErrIllegalTransition is returned when a requested status change is not
	// permitted by the state machine, e.g. any transition out of a terminal
	// state or into a driver-requiring state without an assigned driver.
	// Callers distinguish it from ErrObjectNotFound with errors.Is.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Delivery is the aggregate root for a single order's physical fulfillment.
// It owns the delivery status state machine, the append-only tracking history
// and the fulfillment timestamps.
//
// Invariants:
//   - driver reference is non-nil if and only if the status is Assigned,
//     PickedUp or OnTheWay, or a later state that retained the assignment
//   - tracking history only grows, with non-decreasing timestamps
//   - no transition out of a terminal status
//   - can only be created through NewDelivery or RestoreDelivery
//
// The aggregate never mutates driver availability itself: releasing or
// reserving a driver is a registry side effect applied by the status
// transition handler alongside the ledger write.
type Delivery struct {
	id           kernel.UUID
	orderID      string
	customerID   string
	restaurantID string

	pickupAddress   kernel.Address
	deliveryAddress kernel.Address

	// driverID is the assigned driver (nil while pending).
	// It is retained after terminal transitions for audit purposes.
	driverID *kernel.UUID

	status Status

	estimatedPickupTime   *time.Time
	actualPickupTime      *time.Time
	estimatedDeliveryTime *time.Time
	actualDeliveryTime    *time.Time

	currentLocation *kernel.Location
	trackingHistory []TrackingEvent

	createdAt time.Time
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// NewDelivery creates a Delivery in Pending status for the given order.
// The order, customer and restaurant references are opaque identifiers issued
// by the upstream ordering system. A "created" tracking entry is appended
// unconditionally, whether or not a driver is matched afterwards.
func NewDelivery(
	id kernel.UUID,
	orderID, customerID, restaurantID string,
	pickupAddress, deliveryAddress kernel.Address,
	now time.Time,
) (*Delivery, error) {
	d := &Delivery{
		status:    Pending,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setOrderID(orderID),
		d.setCustomerID(customerID),
		d.setRestaurantID(restaurantID),
		d.setPickupAddress(pickupAddress),
		d.setDeliveryAddress(deliveryAddress),
	); err != nil {
		return nil, err
	}

	created, err := NewTrackingEvent(TrackingEventCreated, "Delivery created", nil, now)
	if err != nil {
		return nil, err
	}
	d.trackingHistory = append(d.trackingHistory, created)

	return d, nil
}

// RestoreParams carries the persisted state needed to reconstruct a Delivery.
type RestoreParams struct {
	ID           kernel.UUID
	OrderID      string
	CustomerID   string
	RestaurantID string

	PickupAddress   kernel.Address
	DeliveryAddress kernel.Address

	DriverID *kernel.UUID
	Status   Status

	EstimatedPickupTime   *time.Time
	ActualPickupTime      *time.Time
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time

	CurrentLocation *kernel.Location
	TrackingHistory []TrackingEvent

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RestoreDelivery reconstructs a Delivery aggregate from persistent storage.
// Unlike NewDelivery it does not append a creation tracking entry; the history
// is restored exactly as persisted. The restored aggregate behaves identically
// to one built through normal domain operations.
func RestoreDelivery(p RestoreParams) (*Delivery, error) {
	d := &Delivery{
		status:                p.Status,
		estimatedPickupTime:   p.EstimatedPickupTime,
		actualPickupTime:      p.ActualPickupTime,
		estimatedDeliveryTime: p.EstimatedDeliveryTime,
		actualDeliveryTime:    p.ActualDeliveryTime,
		currentLocation:       p.CurrentLocation,
		trackingHistory:       p.TrackingHistory,
		createdAt:             p.CreatedAt,
		updatedAt:             p.UpdatedAt,
		guard:                 guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(p.ID),
		d.setOrderID(p.OrderID),
		d.setCustomerID(p.CustomerID),
		d.setRestaurantID(p.RestaurantID),
		d.setPickupAddress(p.PickupAddress),
		d.setDeliveryAddress(p.DeliveryAddress),
		p.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if p.DriverID != nil {
		if err := p.DriverID.Validate(); err != nil {
			return nil, err
		}
		d.driverID = p.DriverID
	}
	if p.CurrentLocation != nil {
		if err := p.CurrentLocation.Validate(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Validate ensures the Delivery was properly constructed through a factory method.
func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

// IsEqual compares two deliveries by their unique identifiers.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// OrderID returns the upstream order reference.
func (d *Delivery) OrderID() string {
	return d.orderID
}

// CustomerID returns the upstream customer reference.
func (d *Delivery) CustomerID() string {
	return d.customerID
}

// RestaurantID returns the upstream restaurant reference.
func (d *Delivery) RestaurantID() string {
	return d.restaurantID
}

// PickupAddress returns the pickup address.
func (d *Delivery) PickupAddress() kernel.Address {
	return d.pickupAddress
}

// DeliveryAddress returns the dropoff address.
func (d *Delivery) DeliveryAddress() kernel.Address {
	return d.deliveryAddress
}

// Driver returns the assigned driver's ID, or nil if no driver is assigned.
func (d *Delivery) Driver() *kernel.UUID {
	return d.driverID
}

// Status returns the current status of the delivery.
func (d *Delivery) Status() Status {
	return d.status
}

// EstimatedPickupTime returns the estimated pickup time, or nil if unset.
func (d *Delivery) EstimatedPickupTime() *time.Time {
	return d.estimatedPickupTime
}

// ActualPickupTime returns the recorded pickup time, or nil if not picked up.
func (d *Delivery) ActualPickupTime() *time.Time {
	return d.actualPickupTime
}

// EstimatedDeliveryTime returns the ETA computed at assignment, or nil.
func (d *Delivery) EstimatedDeliveryTime() *time.Time {
	return d.estimatedDeliveryTime
}

// ActualDeliveryTime returns the recorded completion time, or nil.
func (d *Delivery) ActualDeliveryTime() *time.Time {
	return d.actualDeliveryTime
}

// CurrentLocation returns the latest courier position snapshot, or nil.
func (d *Delivery) CurrentLocation() *kernel.Location {
	return d.currentLocation
}

// CreatedAt returns the creation time of the delivery.
func (d *Delivery) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns the time of the last mutation.
func (d *Delivery) UpdatedAt() time.Time {
	return d.updatedAt
}

// TrackingHistory returns a copy of the append-only tracking history,
// oldest entry first.
func (d *Delivery) TrackingHistory() []TrackingEvent {
	history := make([]TrackingEvent, len(d.trackingHistory))
	copy(history, d.trackingHistory)
	return history
}

// AssignDriver binds a driver to a pending delivery, moving it to Assigned
// and recording the delivery-time estimate computed by the matching strategy.
// Appends the "assigned" tracking entry.
//
// Assignment is only legal from Pending: re-assignment of an already assigned
// delivery is not part of the workflow (the driver holds the reservation until
// a terminal transition releases it).
func (d *Delivery) AssignDriver(driverID kernel.UUID, estimatedDeliveryTime time.Time, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if d.status != Pending {
		return fmt.Errorf("%w: cannot assign driver in status %s", ErrIllegalTransition, d.status)
	}

	d.status = Assigned
	d.driverID = &driverID
	d.estimatedDeliveryTime = &estimatedDeliveryTime
	d.updatedAt = now

	d.appendStatusTracking(Assigned, now)
	return nil
}

// TransitionTo applies a status change with its ledger-side effects:
// timestamp stamps and the tracking-history entry. Registry-side effects
// (releasing the driver's reservation on terminal states) are the transition
// handler's responsibility and are driven by Status.ReleasesDriver.
//
// Stamps are overwrite-safe: re-entering PickedUp or Delivered would simply
// overwrite the timestamp with the same clock reading, so redelivered
// transition messages cannot corrupt state.
//
// Returns ErrIllegalTransition (wrapped) when the change is not permitted.
func (d *Delivery) TransitionTo(target Status, now time.Time) error {
	if err := d.status.CanTransitionTo(target); err != nil {
		return err
	}
	if d.driverID == nil && requiresDriver(target) {
		return fmt.Errorf("%w: status %s requires an assigned driver", ErrIllegalTransition, target)
	}

	d.status = target
	d.updatedAt = now

	if stamp, ok := getStatusStamps()[target]; ok {
		stamp(d, now)
	}

	d.appendStatusTracking(target, now)
	return nil
}

// getStatusStamps maps each status to the fulfillment timestamp it records on
// entry. Statuses without an entry stamp nothing, which keeps the mapping
// forward-compatible with statuses added later, mirroring
// getStatusDescriptions.
func getStatusStamps() map[Status]func(*Delivery, time.Time) {
	return map[Status]func(*Delivery, time.Time){
		PickedUp:  func(d *Delivery, now time.Time) { d.actualPickupTime = &now },
		Delivered: func(d *Delivery, now time.Time) { d.actualDeliveryTime = &now },
	}
}

// UpdateCurrentLocation records a courier position report: refreshes the
// location snapshot and appends a "location_update" tracking entry. This is
// the high-frequency path and deliberately performs no status validation.
func (d *Delivery) UpdateCurrentLocation(location kernel.Location, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}

	d.currentLocation = &location
	d.updatedAt = now

	event, err := NewTrackingEvent(TrackingEventLocationUpdate, "Location updated", &location, now)
	if err != nil {
		return err
	}
	return d.AppendTracking(event)
}

// RecordPaymentConfirmed appends the payment-confirmed tracking marker.
// Payment confirmation is not a delivery status; it only annotates history.
func (d *Delivery) RecordPaymentConfirmed(now time.Time) error {
	event, err := NewTrackingEvent(TrackingEventPaymentConfirmed, "Payment confirmed for order", nil, now)
	if err != nil {
		return err
	}
	d.updatedAt = now
	return d.AppendTracking(event)
}

// AppendTracking appends an event to the tracking history, enforcing the
// non-decreasing timestamp invariant.
func (d *Delivery) AppendTracking(event TrackingEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if n := len(d.trackingHistory); n > 0 {
		if event.OccurredAt().Before(d.trackingHistory[n-1].OccurredAt()) {
			return errs.NewValueIsInvalidErrorWithCause("tracking event is out of order",
				fmt.Errorf("event at %s precedes last entry at %s",
					event.OccurredAt(), d.trackingHistory[n-1].OccurredAt()))
		}
	}

	d.trackingHistory = append(d.trackingHistory, event)
	return nil
}

// requiresDriver reports whether a status is only reachable with a driver assigned.
func requiresDriver(s Status) bool {
	return s == Assigned || s == PickedUp || s == OnTheWay
}

func (d *Delivery) appendStatusTracking(s Status, now time.Time) {
	event, err := NewTrackingEvent(s.String(), s.Description(), d.currentLocation, now)
	if err != nil {
		return
	}
	// Tracking append is best effort: a rejected entry must not fail the
	// transition that caused it.
	_ = d.AppendTracking(event)
}

func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderID")
	}
	d.orderID = orderID
	return nil
}

func (d *Delivery) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerID")
	}
	d.customerID = customerID
	return nil
}

func (d *Delivery) setRestaurantID(restaurantID string) error {
	if restaurantID == "" {
		return errs.NewValueIsRequiredError("restaurantID")
	}
	d.restaurantID = restaurantID
	return nil
}

func (d *Delivery) setPickupAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	d.pickupAddress = address
	return nil
}

func (d *Delivery) setDeliveryAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	d.deliveryAddress = address
	return nil
}
