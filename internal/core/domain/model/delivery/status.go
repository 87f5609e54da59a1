package delivery

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery.
// It implements a state machine with defined transitions to ensure
// deliveries follow the correct fulfillment workflow.
//
// State transitions:
//
//	Pending ──> Assigned ──> PickedUp ──> OnTheWay ──> Delivered
//	   │            │            │            │
//	   └────────────┴────────────┴────────────┴──> Cancelled / Failed
//
// Delivered, Cancelled and Failed are terminal: no transition out of a
// terminal state is legal. A transition's structural legality depends only on
// the current state not being terminal and the target being a known status;
// the forward chain above is the expected flow, not a hard constraint, so an
// assigned delivery may be marked delivered directly.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: the delivery exists but no driver
	// has been assigned yet.
	Pending

	// Assigned indicates a driver has been reserved for the delivery.
	Assigned

	// PickedUp indicates the driver has collected the order from the restaurant.
	PickedUp

	// OnTheWay indicates the driver is en route to the delivery address.
	OnTheWay

	// Delivered indicates successful completion. Terminal.
	Delivered

	// Cancelled indicates the delivery was cancelled. Terminal.
	Cancelled

	// Failed indicates the delivery could not be completed. Terminal.
	Failed
)

// getStatusStrings returns a map of Status values to their wire representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Assigned:  "assigned",
		PickedUp:  "picked_up",
		OnTheWay:  "on_the_way",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Failed:    "failed",
	}
}

// getValidStatusStrings returns a map of only valid Status values.
// Only valid statuses are included to support validation and parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Assigned:  "assigned",
		PickedUp:  "picked_up",
		OnTheWay:  "on_the_way",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Failed:    "failed",
	}
}

// getStatusDescriptions maps each status to the human-readable tracking entry
// recorded when a delivery enters it. Statuses without an entry fall back to a
// generic templated description in Description(), which keeps the mapping
// forward-compatible with statuses added later.
func getStatusDescriptions() map[Status]string {
	//nolint:exhaustive // statuses without a curated text use the fallback
	return map[Status]string{
		Assigned:  "Driver assigned to delivery",
		PickedUp:  "Order picked up from restaurant",
		OnTheWay:  "On the way to delivery address",
		Delivered: "Order delivered successfully",
		Cancelled: "Delivery cancelled",
		Failed:    "Delivery attempt failed",
	}
}

// StatusFromString parses a wire representation ("pending", "picked_up", ...)
// into a Status. Returns an error for unknown values, including "unknown".
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire representation of the status ("pending", "assigned", ...).
// Returns "unknown" for invalid status values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status permits no further transitions.
// Delivered, Cancelled and Failed are terminal.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Failed
}

// ReleasesDriver reports whether entering this status must release the
// assigned driver's reservation in the registry. All terminal states release.
func (s Status) ReleasesDriver() bool {
	return s.IsTerminal()
}

// CanTransitionTo checks whether a transition from the receiver to target is
// structurally legal: both statuses must be valid and the receiver must not be
// terminal.
//
// Returns nil when the transition is legal, ErrIllegalTransition (wrapped with
// detail) otherwise.
func (s Status) CanTransitionTo(target Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if s.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal, cannot transition to %s", ErrIllegalTransition, s, target)
	}
	return nil
}

// Description returns the human-readable tracking-history text for entering
// this status. Statuses without a curated description get a generic templated
// one, so new statuses do not require code changes here.
func (s Status) Description() string {
	if desc, ok := getStatusDescriptions()[s]; ok {
		return desc
	}
	return fmt.Sprintf("Status updated to %s", s)
}
