package delivery

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Tracking event kinds that do not correspond to a status change.
const (
	// TrackingEventCreated is appended exactly once when a delivery is created,
	// whether or not a driver was matched immediately.
	TrackingEventCreated = "created"

	// TrackingEventLocationUpdate is appended on every courier position report.
	TrackingEventLocationUpdate = "location_update"

	// TrackingEventPaymentConfirmed marks that payment for the underlying
	// order succeeded. It is a tracking-only marker: payment confirmation is
	// not a state in the delivery status machine.
	TrackingEventPaymentConfirmed = "payment_confirmed"
)

// ErrTrackingEventIsNotConstructed is returned when using an improperly initialized TrackingEvent.
var ErrTrackingEventIsNotConstructed = errs.NewValueIsRequiredError(
	"tracking event must be created via NewTrackingEvent constructor")

// TrackingEvent is one entry of a delivery's append-only tracking history.
// Entries carry an event kind (a status name or one of the TrackingEvent*
// constants), a human-readable description, an optional location snapshot
// and the time the event occurred.
//
// TrackingEvent is an immutable value object.
type TrackingEvent struct {
	kind        string
	description string
	location    *kernel.Location
	occurredAt  time.Time
	guard       guard.ConstructorGuard
}

// NewTrackingEvent creates a tracking history entry.
// Kind must be non-empty and occurredAt must be non-zero. Location is
// optional: pass nil for events without a position (for example "created").
func NewTrackingEvent(kind, description string, location *kernel.Location, occurredAt time.Time) (TrackingEvent, error) {
	if kind == "" {
		return TrackingEvent{}, errs.NewValueIsRequiredError("kind")
	}
	if occurredAt.IsZero() {
		return TrackingEvent{}, errs.NewValueIsRequiredError("occurredAt")
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return TrackingEvent{}, err
		}
	}

	return TrackingEvent{
		kind:        kind,
		description: description,
		location:    location,
		occurredAt:  occurredAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the TrackingEvent was properly constructed.
func (e TrackingEvent) Validate() error {
	return e.guard.Validate(ErrTrackingEventIsNotConstructed)
}

// Kind returns the event kind.
func (e TrackingEvent) Kind() string {
	return e.kind
}

// Description returns the human-readable description of the event.
func (e TrackingEvent) Description() string {
	return e.description
}

// Location returns the position snapshot attached to the event, or nil.
func (e TrackingEvent) Location() *kernel.Location {
	return e.location
}

// OccurredAt returns the time the event occurred.
func (e TrackingEvent) OccurredAt() time.Time {
	return e.occurredAt
}
