package services

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

const (
	// BasePreparationTime is the fixed head start every estimate includes,
	// covering restaurant preparation and driver arrival at the pickup.
	BasePreparationTime = 20 * time.Minute

	// TravelTimePerDegree converts straight-line coordinate distance into
	// travel time. The factor is calibrated for dense urban areas where one
	// degree of separation is far more than a single trip covers.
	TravelTimePerDegree = 100 * time.Minute
)

// EstimateDeliveryTime computes the expected completion time for a delivery
// dispatched at the given moment:
//
//	now + BasePreparationTime + distance(pickup, dropoff) * TravelTimePerDegree
//
// The estimate is recorded on the delivery at assignment and never revised.
func EstimateDeliveryTime(now time.Time, pickup, dropoff kernel.Location) (time.Time, error) {
	distance, err := pickup.DistanceTo(dropoff)
	if err != nil {
		return time.Time{}, err
	}

	travel := time.Duration(distance * float64(TravelTimePerDegree))
	return now.Add(BasePreparationTime + travel), nil
}
