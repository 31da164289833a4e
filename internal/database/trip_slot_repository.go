package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/seatours/boat-booking-backend/internal/models"
)

// TripSlotRepository handles trip slot and boat persistence
type TripSlotRepository struct {
	db *sqlx.DB
}

// NewTripSlotRepository creates a new trip slot repository
func NewTripSlotRepository(db *sqlx.DB) *TripSlotRepository {
	return &TripSlotRepository{db: db}
}

// GetByID retrieves a trip slot
func (r *TripSlotRepository) GetByID(id int64) (*models.TripSlot, error) {
	var slot models.TripSlot
	err := r.db.Get(&slot, `
		SELECT id, boat_id, departure_date, departure_time, return_time, max_seats, is_active, created_at, updated_at
		FROM trip_slots WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip slot: %w", err)
	}
	return &slot, nil
}

// GetBoatByID retrieves a boat
func (r *TripSlotRepository) GetBoatByID(id int64) (*models.Boat, error) {
	var boat models.Boat
	err := r.db.Get(&boat, `
		SELECT id, owner_id, name, description, capacity, is_active, created_at, updated_at
		FROM boats WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get boat: %w", err)
	}
	return &boat, nil
}

// Search returns active trip slots matching the filter, joined with
// their boat. Availability is computed by the inventory service on top.
func (r *TripSlotRepository) Search(filter models.TripSearchFilter) ([]*models.TripSlot, error) {
	query := `
		SELECT s.id, s.boat_id, s.departure_date, s.departure_time, s.return_time,
		       s.max_seats, s.is_active, s.created_at, s.updated_at
		FROM trip_slots s
		JOIN boats b ON b.id = s.boat_id
		WHERE s.is_active = TRUE AND b.is_active = TRUE`
	args := []interface{}{}
	argIdx := 1

	addCond := func(cond string, value interface{}) {
		query += fmt.Sprintf(" AND "+cond, argIdx)
		args = append(args, value)
		argIdx++
	}

	if filter.BoatID != nil {
		addCond("s.boat_id = $%d", *filter.BoatID)
	}
	if filter.DateFrom != nil {
		addCond("s.departure_date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCond("s.departure_date <= $%d", *filter.DateTo)
	}

	query += " ORDER BY s.departure_date, s.departure_time"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	slots := []*models.TripSlot{}
	if err := r.db.Select(&slots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search trip slots: %w", err)
	}
	return slots, nil
}
