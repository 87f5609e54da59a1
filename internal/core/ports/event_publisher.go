package ports

import (
	"context"
	"time"
)

// Delivery event kinds published to the message bus. The transport maps a
// kind to its routing key, so downstream consumers can bind selectively.
const (
	EventKindCreated       = "created"
	EventKindStatusChanged = "status_changed"
	EventKindCancelled     = "cancelled"
)

// DeliveryEvent is the integration event emitted for delivery lifecycle
// changes. It is intentionally flat: consumers outside this service should
// not need the domain model to decode it.
type DeliveryEvent struct {
	Kind       string    `json:"kind"`
	DeliveryID string    `json:"delivery_id"`
	OrderID    string    `json:"order_id"`
	DriverID   *string   `json:"driver_id,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher publishes delivery integration events to the message bus.
//
// Publishing happens after the owning transaction commits. A publish failure
// must not fail the command that produced the event; implementations and
// callers log and continue.
type EventPublisher interface {
	Publish(ctx context.Context, event DeliveryEvent) error
}
