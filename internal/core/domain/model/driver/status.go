package driver

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents a driver's availability state in the registry.
//
// Busy is special: it is only entered through Reserve when a delivery claims
// the driver, and only left through Release. Operators pick among the
// remaining states (offline, available, on_break).
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Offline means the driver is not working and must not be matched.
	Offline

	// Available means the driver is working and can be claimed for a delivery.
	Available

	// Busy means the driver holds a delivery reservation.
	Busy

	// OnBreak means the driver is working but temporarily not matchable.
	OnBreak
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Offline:   "offline",
		Available: "available",
		Busy:      "busy",
		OnBreak:   "on_break",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Offline:   "offline",
		Available: "available",
		Busy:      "busy",
		OnBreak:   "on_break",
	}
}

// StatusFromString parses a wire representation ("offline", "on_break", ...)
// into a Status. Returns an error for unknown values.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid",
		fmt.Errorf("%q is not a valid driver status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid driver status", s))
	}
	return nil
}

// String returns the wire representation of the status. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsSelectable reports whether an operator may set this status directly.
// Busy is reservation-managed and cannot be selected.
func (s Status) IsSelectable() bool {
	return s == Offline || s == Available || s == OnBreak
}
