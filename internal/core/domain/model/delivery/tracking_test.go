package delivery_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackingEvent(t *testing.T) {
	now := time.Now()

	t.Run("should create event without location", func(t *testing.T) {
		event, err := delivery.NewTrackingEvent(delivery.TrackingEventCreated, "Delivery created", nil, now)

		require.NoError(t, err)
		require.NoError(t, event.Validate())
		assert.Equal(t, delivery.TrackingEventCreated, event.Kind())
		assert.Equal(t, "Delivery created", event.Description())
		assert.Nil(t, event.Location())
		assert.Equal(t, now, event.OccurredAt())
	})

	t.Run("should create event with location", func(t *testing.T) {
		location, err := kernel.NewLocation(40.7128, -74.0060)
		require.NoError(t, err)

		event, err := delivery.NewTrackingEvent(delivery.TrackingEventLocationUpdate, "Location updated", &location, now)

		require.NoError(t, err)
		require.NotNil(t, event.Location())
		equal, err := event.Location().IsEqual(location)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("should fail with empty kind", func(t *testing.T) {
		_, err := delivery.NewTrackingEvent("", "desc", nil, now)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "kind")
	})

	t.Run("should fail with zero time", func(t *testing.T) {
		_, err := delivery.NewTrackingEvent(delivery.TrackingEventCreated, "desc", nil, time.Time{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "occurredAt")
	})

	t.Run("should fail with unconstructed location", func(t *testing.T) {
		var badLocation kernel.Location

		_, err := delivery.NewTrackingEvent(delivery.TrackingEventLocationUpdate, "desc", &badLocation, now)

		require.Error(t, err)
	})

	t.Run("should allow empty description", func(t *testing.T) {
		event, err := delivery.NewTrackingEvent("custom", "", nil, now)

		require.NoError(t, err)
		assert.Empty(t, event.Description())
	})
}

func TestTrackingEvent_Validate(t *testing.T) {
	t.Run("should reject zero value", func(t *testing.T) {
		var event delivery.TrackingEvent

		err := event.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be created via NewTrackingEvent constructor")
	})
}
