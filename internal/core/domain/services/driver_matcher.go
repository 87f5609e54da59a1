package services

import (
	"errors"
	"sort"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoDriverAvailable is returned when no matchable driver exists for a
// delivery. This occurs when either no drivers are provided or none of the
// provided drivers is active, available and has a reported position.
var ErrNoDriverAvailable = errors.New("no driver available")

// DriverMatcher ranks candidate drivers for a pickup location, best first.
//
// Returning a full ranking instead of a single winner lets the dispatcher
// fall through to the next candidate when the atomic claim of the first one
// is lost to a concurrent dispatch.
type DriverMatcher interface {
	Rank(pickup kernel.Location, drivers []*driver.Driver) ([]*driver.Driver, error)
}

// NearestDriverMatcher selects drivers by straight-line proximity to the
// pickup location.
//
// Business rules:
//   - only active, available drivers with a known position are considered
//   - candidates are ordered by ascending distance to the pickup
//   - distance ties break on the lexicographically smaller driver ID,
//     which keeps the ranking deterministic across replicas
type NearestDriverMatcher struct{}

// NewNearestDriverMatcher creates a new NearestDriverMatcher instance.
func NewNearestDriverMatcher() NearestDriverMatcher {
	return NearestDriverMatcher{}
}

// Rank returns the matchable drivers ordered best first.
// Returns ErrNoDriverAvailable when no driver qualifies.
func (m NearestDriverMatcher) Rank(pickup kernel.Location, drivers []*driver.Driver) ([]*driver.Driver, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	type candidate struct {
		driver   *driver.Driver
		distance float64
	}

	candidates := make([]candidate, 0, len(drivers))
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if !d.IsMatchable() {
			continue
		}

		distance, err := d.CurrentLocation().DistanceTo(pickup)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{driver: d, distance: distance})
	}

	if len(candidates) == 0 {
		return nil, ErrNoDriverAvailable
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].driver.ID().String() < candidates[j].driver.ID().String()
	})

	ranked := make([]*driver.Driver, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.driver
	}
	return ranked, nil
}
