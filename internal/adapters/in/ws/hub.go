// Package ws implements the live tracking fan-out over WebSocket.
// Subscribers register per delivery; every tracking update for that delivery
// is pushed to all of its subscribers. Slow consumers are dropped rather than
// allowed to stall the broadcast path.
package ws

import (
	"log/slog"
	"sync"

	"dispatch/internal/core/ports"
)

// sendBuffer is the per-subscriber queue depth. A subscriber that falls this
// far behind is disconnected.
const sendBuffer = 16

// subscriber is one WebSocket connection watching a delivery.
type subscriber struct {
	deliveryID string
	send       chan ports.TrackingUpdate
}

// Hub tracks subscribers per delivery and fans tracking updates out to them.
// It implements ports.TrackingBroadcaster. All methods are safe for
// concurrent use.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	logger      *slog.Logger
}

// NewHub creates an empty tracking hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger.With("component", "tracking_hub"),
	}
}

// Broadcast pushes an update to every subscriber of the delivery.
// It never blocks: a subscriber whose buffer is full is unsubscribed and its
// channel closed, which terminates that connection's writer.
//
// Sends happen under the read lock while unsubscribe closes channels under
// the write lock, so a send can never hit a channel closed by a concurrent
// disconnect.
func (h *Hub) Broadcast(update ports.TrackingUpdate) {
	var slow []*subscriber

	h.mu.RLock()
	for s := range h.subscribers[update.DeliveryID] {
		select {
		case s.send <- update:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.logger.Warn("dropping slow tracking subscriber", "delivery_id", update.DeliveryID)
		h.unsubscribe(s)
	}
}

// subscribe registers a new watcher for a delivery and returns it.
func (h *Hub) subscribe(deliveryID string) *subscriber {
	s := &subscriber{
		deliveryID: deliveryID,
		send:       make(chan ports.TrackingUpdate, sendBuffer),
	}

	h.mu.Lock()
	watchers, ok := h.subscribers[deliveryID]
	if !ok {
		watchers = make(map[*subscriber]struct{})
		h.subscribers[deliveryID] = watchers
	}
	watchers[s] = struct{}{}
	h.mu.Unlock()

	return s
}

// unsubscribe removes a watcher and closes its channel. Safe to call more
// than once for the same subscriber.
func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers, ok := h.subscribers[s.deliveryID]
	if !ok {
		return
	}
	if _, member := watchers[s]; !member {
		return
	}

	delete(watchers, s)
	if len(watchers) == 0 {
		delete(h.subscribers, s.deliveryID)
	}
	close(s.send)
}

// subscriberCount reports how many connections watch a delivery.
func (h *Hub) subscriberCount(deliveryID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[deliveryID])
}
