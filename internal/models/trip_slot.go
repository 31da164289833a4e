package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Boat represents a vessel in the operator's fleet
type Boat struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Capacity    int       `db:"capacity" json:"capacity"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TripSlot represents a scheduled departure window for a boat.
// Departure and return times are stored as local wall-clock strings
// ("15:04"); a return at or before the departure time means the trip
// comes back after midnight.
type TripSlot struct {
	ID            int64     `db:"id" json:"id"`
	BoatID        int64     `db:"boat_id" json:"boat_id"`
	DepartureDate time.Time `db:"departure_date" json:"departure_date"`
	DepartureTime string    `db:"departure_time" json:"departure_time"`
	ReturnTime    string    `db:"return_time" json:"return_time"`
	MaxSeats      *int      `db:"max_seats" json:"max_seats,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// EffectiveCapacity returns the seat ceiling for the slot: the slot's
// max_seats override when set, the boat capacity otherwise.
func (s *TripSlot) EffectiveCapacity(boat *Boat) int {
	if s.MaxSeats != nil && *s.MaxSeats > 0 && *s.MaxSeats < boat.Capacity {
		return *s.MaxSeats
	}
	return boat.Capacity
}

const wallClockLayout = "15:04"

// Window resolves the slot into concrete start and end datetimes.
// Trips crossing midnight end on the following day.
func (s *TripSlot) Window() (time.Time, time.Time, error) {
	dep, err := time.Parse(wallClockLayout, s.DepartureTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid departure time %q: %w", s.DepartureTime, err)
	}
	ret, err := time.Parse(wallClockLayout, s.ReturnTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid return time %q: %w", s.ReturnTime, err)
	}

	year, month, day := s.DepartureDate.Date()
	loc := s.DepartureDate.Location()
	start := time.Date(year, month, day, dep.Hour(), dep.Minute(), 0, 0, loc)
	end := time.Date(year, month, day, ret.Hour(), ret.Minute(), 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// DurationHours returns the trip length rounded up to whole hours.
// Rates are keyed by whole-hour durations, so a 2.5h window books
// against the 3h rate.
func (s *TripSlot) DurationHours() (int, error) {
	start, end, err := s.Window()
	if err != nil {
		return 0, err
	}
	d := end.Sub(start)
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours, nil
}
