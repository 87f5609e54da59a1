package ws

import (
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.DiscardHandler))
}

func trackingUpdate(deliveryID, kind string) ports.TrackingUpdate {
	return ports.TrackingUpdate{
		DeliveryID: deliveryID,
		Kind:       kind,
		Status:     "on_the_way",
		OccurredAt: time.Now().UTC(),
	}
}

func TestBroadcast_ReachesEverySubscriber(t *testing.T) {
	hub := newTestHub()

	first := hub.subscribe("delivery-1")
	second := hub.subscribe("delivery-1")

	hub.Broadcast(trackingUpdate("delivery-1", "location_update"))

	for _, s := range []*subscriber{first, second} {
		select {
		case update := <-s.send:
			assert.Equal(t, "delivery-1", update.DeliveryID)
			assert.Equal(t, "location_update", update.Kind)
		default:
			t.Fatal("subscriber did not receive the update")
		}
	}
}

func TestBroadcast_IsolatedPerDelivery(t *testing.T) {
	hub := newTestHub()

	watcher := hub.subscribe("delivery-1")
	other := hub.subscribe("delivery-2")

	hub.Broadcast(trackingUpdate("delivery-1", "location_update"))

	select {
	case <-watcher.send:
	default:
		t.Fatal("watcher did not receive the update")
	}

	select {
	case <-other.send:
		t.Fatal("subscriber of another delivery received the update")
	default:
	}
}

func TestBroadcast_NoSubscribers_DoesNotBlock(t *testing.T) {
	hub := newTestHub()

	done := make(chan struct{})
	go func() {
		hub.Broadcast(trackingUpdate("delivery-1", "location_update"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked with no subscribers")
	}
}

func TestBroadcast_DropsSlowSubscriber(t *testing.T) {
	hub := newTestHub()

	slow := hub.subscribe("delivery-1")
	healthy := hub.subscribe("delivery-1")

	// Fill the slow subscriber's buffer while the healthy one keeps up.
	for i := 0; i <= sendBuffer; i++ {
		hub.Broadcast(trackingUpdate("delivery-1", "location_update"))
		select {
		case <-healthy.send:
		default:
		}
	}

	assert.Equal(t, 1, hub.subscriberCount("delivery-1"))

	// The slow subscriber's channel is closed after its buffered updates.
	drained := 0
	for range slow.send {
		drained++
	}
	assert.Equal(t, sendBuffer, drained)

	// The healthy subscriber keeps receiving.
	hub.Broadcast(trackingUpdate("delivery-1", "location_update"))
	select {
	case update := <-healthy.send:
		assert.Equal(t, "delivery-1", update.DeliveryID)
	default:
		t.Fatal("healthy subscriber stopped receiving")
	}
}

func TestBroadcast_ConcurrentWithDisconnects(t *testing.T) {
	hub := newTestHub()

	// Broadcasts racing subscribe/unsubscribe pairs must never hit a closed
	// channel: a client disconnecting mid-broadcast is routine traffic.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			s := hub.subscribe("delivery-1")
			hub.unsubscribe(s)
		}
	}()

	for i := 0; i < 1000; i++ {
		hub.Broadcast(trackingUpdate("delivery-1", "location_update"))
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("subscribe/unsubscribe loop did not finish")
	}
	assert.Equal(t, 0, hub.subscriberCount("delivery-1"))
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	hub := newTestHub()

	s := hub.subscribe("delivery-1")
	require.Equal(t, 1, hub.subscriberCount("delivery-1"))

	hub.unsubscribe(s)
	hub.unsubscribe(s)

	assert.Equal(t, 0, hub.subscriberCount("delivery-1"))
}
