package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotOn(date time.Time, departure, ret string) *TripSlot {
	return &TripSlot{
		ID:            1,
		BoatID:        7,
		DepartureDate: date,
		DepartureTime: departure,
		ReturnTime:    ret,
		IsActive:      true,
	}
}

func TestTripSlotWindow(t *testing.T) {
	date := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	t.Run("SameDay", func(t *testing.T) {
		start, end, err := slotOn(date, "09:00", "12:00").Window()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC), end)
	})

	t.Run("CrossesMidnight", func(t *testing.T) {
		start, end, err := slotOn(date, "22:00", "01:00").Window()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 7, 10, 22, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2026, 7, 11, 1, 0, 0, 0, time.UTC), end)
	})

	t.Run("ReturnEqualsDeparture", func(t *testing.T) {
		// A full-day charter returning at the same wall-clock time ends
		// the next day, never in a zero-length window
		start, end, err := slotOn(date, "10:00", "10:00").Window()
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, end.Sub(start))
	})

	t.Run("InvalidTime", func(t *testing.T) {
		_, _, err := slotOn(date, "25:99", "12:00").Window()
		require.Error(t, err)
	})
}

func TestTripSlotDurationHours(t *testing.T) {
	date := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	t.Run("WholeHours", func(t *testing.T) {
		hours, err := slotOn(date, "09:00", "12:00").DurationHours()
		require.NoError(t, err)
		assert.Equal(t, 3, hours)
	})

	t.Run("RoundsUp", func(t *testing.T) {
		hours, err := slotOn(date, "09:00", "11:30").DurationHours()
		require.NoError(t, err)
		assert.Equal(t, 3, hours)
	})

	t.Run("OvernightTrip", func(t *testing.T) {
		hours, err := slotOn(date, "22:00", "01:00").DurationHours()
		require.NoError(t, err)
		assert.Equal(t, 3, hours)
	})
}

func TestTripSlotEffectiveCapacity(t *testing.T) {
	date := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	boat := &Boat{ID: 7, Capacity: 11}

	t.Run("DefaultsToBoatCapacity", func(t *testing.T) {
		assert.Equal(t, 11, slotOn(date, "09:00", "12:00").EffectiveCapacity(boat))
	})

	t.Run("OverrideLowersCeiling", func(t *testing.T) {
		slot := slotOn(date, "09:00", "12:00")
		eight := 8
		slot.MaxSeats = &eight
		assert.Equal(t, 8, slot.EffectiveCapacity(boat))
	})

	t.Run("OverrideNeverRaisesCeiling", func(t *testing.T) {
		slot := slotOn(date, "09:00", "12:00")
		twenty := 20
		slot.MaxSeats = &twenty
		assert.Equal(t, 11, slot.EffectiveCapacity(boat))
	})
}

func TestPromoCodeIsUsable(t *testing.T) {
	now := time.Now()
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&PromoCode{IsActive: true}).IsUsable(now))
	assert.True(t, (&PromoCode{IsActive: true, ExpiresAt: &future}).IsUsable(now))
	assert.False(t, (&PromoCode{IsActive: false}).IsUsable(now))
	assert.False(t, (&PromoCode{IsActive: true, ExpiresAt: &expired}).IsUsable(now))
}
