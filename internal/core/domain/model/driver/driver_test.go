package driver_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T, now time.Time) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), "Alice", "+15550001111", "alice@example.com", "bike", now)
	require.NoError(t, err)
	return d
}

func availableDriver(t *testing.T, now time.Time) *driver.Driver {
	t.Helper()
	d := newTestDriver(t, now)
	location, err := kernel.NewLocation(40.0, -74.0)
	require.NoError(t, err)
	require.NoError(t, d.UpdateLocation(location, now))
	require.NoError(t, d.ChangeStatus(driver.Available, now))
	return d
}

func TestNewDriver(t *testing.T) {
	now := time.Now()

	t.Run("should create offline driver with default rating", func(t *testing.T) {
		id := kernel.NewUUID()

		d, err := driver.NewDriver(id, "Alice", "+15550001111", "alice@example.com", "bike", now)

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.True(t, d.ID().IsEqual(id))
		assert.Equal(t, "Alice", d.Name())
		assert.Equal(t, "+15550001111", d.Phone())
		assert.Equal(t, "alice@example.com", d.Email())
		assert.Equal(t, "bike", d.VehicleType())
		assert.Equal(t, driver.Offline, d.Status())
		assert.Nil(t, d.CurrentLocation())
		assert.Nil(t, d.CurrentDelivery())
		assert.InEpsilon(t, 5.0, d.Rating(), 1e-9)
		assert.Zero(t, d.TotalDeliveries())
		assert.True(t, d.IsActive())
	})

	t.Run("should fail with empty name", func(t *testing.T) {
		d, err := driver.NewDriver(kernel.NewUUID(), "", "+15550001111", "alice@example.com", "bike", now)

		require.Error(t, err)
		assert.Nil(t, d)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("should fail with invalid UUID", func(t *testing.T) {
		var invalidID kernel.UUID

		d, err := driver.NewDriver(invalidID, "Alice", "+15550001111", "alice@example.com", "bike", now)

		require.Error(t, err)
		assert.Nil(t, d)
	})
}

func TestDriver_IsMatchable(t *testing.T) {
	now := time.Now()

	t.Run("should match available driver with a position", func(t *testing.T) {
		d := availableDriver(t, now)

		assert.True(t, d.IsMatchable())
	})

	t.Run("should not match offline driver", func(t *testing.T) {
		d := newTestDriver(t, now)
		location, err := kernel.NewLocation(40.0, -74.0)
		require.NoError(t, err)
		require.NoError(t, d.UpdateLocation(location, now))

		assert.False(t, d.IsMatchable())
	})

	t.Run("should not match driver without a position", func(t *testing.T) {
		d := newTestDriver(t, now)
		require.NoError(t, d.ChangeStatus(driver.Available, now))

		assert.False(t, d.IsMatchable())
	})

	t.Run("should not match deactivated driver", func(t *testing.T) {
		d := availableDriver(t, now)
		d.Deactivate(now)

		assert.False(t, d.IsMatchable())
	})
}

func TestDriver_Reserve(t *testing.T) {
	now := time.Now()

	t.Run("should reserve available driver", func(t *testing.T) {
		d := availableDriver(t, now)
		deliveryID := kernel.NewUUID()

		err := d.Reserve(deliveryID, now)

		require.NoError(t, err)
		assert.Equal(t, driver.Busy, d.Status())
		require.NotNil(t, d.CurrentDelivery())
		assert.True(t, d.CurrentDelivery().IsEqual(deliveryID))
	})

	t.Run("should fail when driver is already reserved", func(t *testing.T) {
		d := availableDriver(t, now)
		require.NoError(t, d.Reserve(kernel.NewUUID(), now))

		err := d.Reserve(kernel.NewUUID(), now)

		require.Error(t, err)
		assert.ErrorIs(t, err, driver.ErrDriverNotReservable)
	})

	t.Run("should fail when driver is offline", func(t *testing.T) {
		d := newTestDriver(t, now)

		err := d.Reserve(kernel.NewUUID(), now)

		require.Error(t, err)
		assert.ErrorIs(t, err, driver.ErrDriverNotReservable)
	})

	t.Run("should fail with invalid delivery ID", func(t *testing.T) {
		d := availableDriver(t, now)
		var invalidID kernel.UUID

		err := d.Reserve(invalidID, now)

		require.Error(t, err)
		assert.Equal(t, driver.Available, d.Status())
	})
}

func TestDriver_Release(t *testing.T) {
	now := time.Now()

	t.Run("should release reserved driver", func(t *testing.T) {
		d := availableDriver(t, now)
		require.NoError(t, d.Reserve(kernel.NewUUID(), now))

		d.Release(now)

		assert.Equal(t, driver.Available, d.Status())
		assert.Nil(t, d.CurrentDelivery())
	})

	t.Run("should be a no-op without a reservation", func(t *testing.T) {
		d := availableDriver(t, now)

		d.Release(now)
		d.Release(now)

		assert.Equal(t, driver.Available, d.Status())
	})
}

func TestDriver_ChangeStatus(t *testing.T) {
	now := time.Now()

	t.Run("should apply operator statuses", func(t *testing.T) {
		d := newTestDriver(t, now)

		require.NoError(t, d.ChangeStatus(driver.Available, now))
		assert.Equal(t, driver.Available, d.Status())

		require.NoError(t, d.ChangeStatus(driver.OnBreak, now))
		assert.Equal(t, driver.OnBreak, d.Status())

		require.NoError(t, d.ChangeStatus(driver.Offline, now))
		assert.Equal(t, driver.Offline, d.Status())
	})

	t.Run("should reject busy as a target", func(t *testing.T) {
		d := newTestDriver(t, now)

		err := d.ChangeStatus(driver.Busy, now)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reservation")
	})

	t.Run("should reject changes while reserved", func(t *testing.T) {
		d := availableDriver(t, now)
		require.NoError(t, d.Reserve(kernel.NewUUID(), now))

		err := d.ChangeStatus(driver.Offline, now)

		require.Error(t, err)
		assert.ErrorIs(t, err, driver.ErrDriverIsBusy)
		assert.Equal(t, driver.Busy, d.Status())
	})
}

func TestDriver_SetRating(t *testing.T) {
	now := time.Now()

	t.Run("should accept ratings within range", func(t *testing.T) {
		d := newTestDriver(t, now)

		require.NoError(t, d.SetRating(3.5, now))
		assert.InEpsilon(t, 3.5, d.Rating(), 1e-9)
	})

	t.Run("should reject out-of-range ratings", func(t *testing.T) {
		d := newTestDriver(t, now)

		require.Error(t, d.SetRating(-0.1, now))
		require.Error(t, d.SetRating(5.1, now))
		assert.InEpsilon(t, 5.0, d.Rating(), 1e-9)
	})
}

func TestDriver_RecordCompletedDelivery(t *testing.T) {
	now := time.Now()

	t.Run("should increment counter", func(t *testing.T) {
		d := newTestDriver(t, now)

		d.RecordCompletedDelivery(now)
		d.RecordCompletedDelivery(now)

		assert.Equal(t, 2, d.TotalDeliveries())
	})
}

func TestRestoreDriver(t *testing.T) {
	now := time.Now()

	t.Run("should restore persisted state", func(t *testing.T) {
		id := kernel.NewUUID()
		deliveryID := kernel.NewUUID()
		location, err := kernel.NewLocation(40.0, -74.0)
		require.NoError(t, err)

		d, err := driver.RestoreDriver(driver.RestoreParams{
			ID:                id,
			Name:              "Alice",
			Phone:             "+15550001111",
			Email:             "alice@example.com",
			VehicleType:       "car",
			Status:            driver.Busy,
			CurrentLocation:   &location,
			CurrentDeliveryID: &deliveryID,
			Rating:            4.2,
			TotalDeliveries:   17,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		})

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.Equal(t, driver.Busy, d.Status())
		require.NotNil(t, d.CurrentDelivery())
		assert.True(t, d.CurrentDelivery().IsEqual(deliveryID))
		assert.InEpsilon(t, 4.2, d.Rating(), 1e-9)
		assert.Equal(t, 17, d.TotalDeliveries())
	})

	t.Run("should fail with invalid status", func(t *testing.T) {
		_, err := driver.RestoreDriver(driver.RestoreParams{
			ID:          kernel.NewUUID(),
			Name:        "Alice",
			Phone:       "+15550001111",
			Email:       "alice@example.com",
			VehicleType: "car",
			Status:      driver.Unknown,
			Rating:      4.2,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})

		require.Error(t, err)
	})
}

func TestDriver_Validate(t *testing.T) {
	t.Run("should reject zero value", func(t *testing.T) {
		var d driver.Driver

		err := d.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, driver.ErrDriverIsNotConstructed)
	})
}
