// Package services provides domain services that orchestrate business
// operations across multiple domain entities in the dispatch system. It
// implements logic that doesn't naturally belong to a single aggregate root.
//
// The package includes:
//   - DriverMatcher / NearestDriverMatcher: ranking of candidate drivers for
//     a delivery by proximity to the pickup, with deterministic tie-breaking
//   - EstimateDeliveryTime: the delivery-time estimate recorded at assignment
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design principles.
package services
