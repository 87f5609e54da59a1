// Package delivery provides domain entities and business logic for order
// fulfillment tracking. It implements the Delivery aggregate root with its
// status state machine and append-only tracking history.
//
// The package includes:
//   - Delivery: The aggregate root that manages delivery identity, driver
//     assignment, fulfillment timestamps and the tracking history
//   - Status: A state machine over the delivery lifecycle with three terminal
//     states (Delivered, Cancelled, Failed)
//   - TrackingEvent: An immutable history entry recorded for every status
//     change, location report and payment confirmation
//
// Key business rules:
//   - A delivery starts Pending with a single "created" tracking entry
//   - A driver may only be bound while the delivery is Pending
//   - No transition leaves a terminal status
//   - Tracking history only grows, with non-decreasing timestamps
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package delivery
