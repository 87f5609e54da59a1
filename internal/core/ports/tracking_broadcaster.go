package ports

import (
	"time"
)

// TrackingUpdate is the live-tracking payload pushed to subscribers of a
// delivery. Latitude and longitude are set together or not at all.
type TrackingUpdate struct {
	DeliveryID  string    `json:"delivery_id"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TrackingBroadcaster fans a tracking update out to every subscriber watching
// the delivery. Broadcast is fire and forget: it never blocks the caller and
// a slow or dead subscriber only affects that subscriber.
type TrackingBroadcaster interface {
	Broadcast(update TrackingUpdate)
}
