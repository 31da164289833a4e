package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/seatours/boat-booking-backend/internal/models"
)

const bookingColumns = `
	id, boat_id, trip_slot_id, kind, start_datetime, end_datetime, duration_hours,
	customer_id, guide_id, hotel_id, guest_name, guest_phone, head_count,
	price_per_person, original_price, discount_percent, discount_amount,
	promo_code, promo_discount, hotel_cashback_percent, hotel_cashback_amount,
	total_price, deposit, remaining_amount, payment_method, status,
	notification_sent, guide_reminder_sent, calendar_event_id,
	notes, cancelled_at, cancellation_reason, created_at, updated_at`

const bookingInsert = `
	INSERT INTO bookings (
		id, boat_id, trip_slot_id, kind, start_datetime, end_datetime, duration_hours,
		customer_id, guide_id, hotel_id, guest_name, guest_phone, head_count,
		price_per_person, original_price, discount_percent, discount_amount,
		promo_code, promo_discount, hotel_cashback_percent, hotel_cashback_amount,
		total_price, deposit, remaining_amount, payment_method, status, notes
	) VALUES (
		:id, :boat_id, :trip_slot_id, :kind, :start_datetime, :end_datetime, :duration_hours,
		:customer_id, :guide_id, :hotel_id, :guest_name, :guest_phone, :head_count,
		:price_per_person, :original_price, :discount_percent, :discount_amount,
		:promo_code, :promo_discount, :hotel_cashback_percent, :hotel_cashback_amount,
		:total_price, :deposit, :remaining_amount, :payment_method, :status, :notes
	) RETURNING created_at, updated_at`

// BookingRepository handles booking persistence
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Begin starts a transaction for multi-step booking operations
func (r *BookingRepository) Begin() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// Create inserts a booking without any capacity check. Used for
// operator seat blocks and administrative inserts; customer bookings
// go through CreateReserved.
func (r *BookingRepository) Create(booking *models.Booking) error {
	rows, err := r.db.NamedQuery(bookingInsert, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan booking timestamps: %w", err)
		}
	}
	return rows.Err()
}

// CreateReserved inserts a booking after re-checking capacity while
// holding an exclusive lock on the boat row. Two concurrent requests
// for the last seats serialize here; the loser gets a CapacityError.
func (r *BookingRepository) CreateReserved(booking *models.Booking, capacity int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Serialize every capacity check for this boat on its catalog
	// row. The boat row always exists, so two requests conflict even
	// when no overlapping bookings exist yet. Locking the overlapping
	// bookings themselves would not work: a request that blocked there
	// resumes with the statement snapshot it started with and never
	// sees the winner's freshly inserted row.
	var boatID int64
	if err := tx.Get(&boatID, `SELECT id FROM boats WHERE id = $1 FOR UPDATE`, booking.BoatID); err != nil {
		return fmt.Errorf("failed to lock boat: %w", err)
	}

	// 2. Re-check capacity. This statement starts after the boat lock
	// is granted, so its snapshot includes every booking committed by
	// earlier holders of the lock.
	var occupied int
	err = tx.Get(&occupied, `
		SELECT COALESCE(SUM(head_count), 0) FROM bookings
		WHERE boat_id = $1
		  AND start_datetime < $2
		  AND end_datetime > $3
		  AND status IN ('reserved', 'pending', 'confirmed')`,
		booking.BoatID, booking.EndDatetime, booking.StartDatetime)
	if err != nil {
		return fmt.Errorf("failed to count held seats: %w", err)
	}
	available := capacity - occupied
	if booking.HeadCount > available {
		return &models.CapacityError{
			BoatID:    booking.BoatID,
			Requested: booking.HeadCount,
			Available: available,
		}
	}

	// 3. Insert the new booking
	rows, err := tx.NamedQuery(bookingInsert, booking)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	if rows.Next() {
		if err := rows.Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan booking timestamps: %w", err)
		}
	}
	rows.Close()

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetByIDForUpdate retrieves a booking inside a transaction with a row lock
func (r *BookingRepository) GetByIDForUpdate(tx *sqlx.Tx, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := tx.Get(&booking, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return &booking, nil
}

// List retrieves bookings matching the filter, newest first
func (r *BookingRepository) List(filter models.BookingFilter) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	addCond := func(cond string, value interface{}) {
		query += fmt.Sprintf(" AND "+cond, argIdx)
		args = append(args, value)
		argIdx++
	}

	if filter.CustomerID != nil {
		addCond("customer_id = $%d", *filter.CustomerID)
	}
	if filter.GuideID != nil {
		addCond("guide_id = $%d", *filter.GuideID)
	}
	if filter.HotelID != nil {
		addCond("hotel_id = $%d", *filter.HotelID)
	}
	if filter.OwnerID != nil {
		addCond("boat_id IN (SELECT id FROM boats WHERE owner_id = $%d)", *filter.OwnerID)
	}
	if filter.BoatID != nil {
		addCond("boat_id = $%d", *filter.BoatID)
	}
	if filter.Status != nil {
		addCond("status = $%d", *filter.Status)
	}
	if filter.DateFrom != nil {
		addCond("start_datetime >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		addCond("start_datetime <= $%d", *filter.DateTo)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	bookings := []*models.Booking{}
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

const bookingUpdate = `
	UPDATE bookings SET
		status = :status,
		deposit = :deposit,
		remaining_amount = :remaining_amount,
		payment_method = :payment_method,
		cancelled_at = :cancelled_at,
		cancellation_reason = :cancellation_reason,
		updated_at = NOW()
	WHERE id = :id`

// Update persists the mutable booking fields
func (r *BookingRepository) Update(booking *models.Booking) error {
	if _, err := r.db.NamedExec(bookingUpdate, booking); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// UpdateTx persists the mutable booking fields inside a transaction
func (r *BookingRepository) UpdateTx(tx *sqlx.Tx, booking *models.Booking) error {
	if _, err := tx.NamedExec(bookingUpdate, booking); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// OccupiedSeats sums the seats held by live bookings overlapping the window
func (r *BookingRepository) OccupiedSeats(boatID int64, start, end time.Time) (int, error) {
	var occupied int
	err := r.db.Get(&occupied, `
		SELECT COALESCE(SUM(head_count), 0) FROM bookings
		WHERE boat_id = $1
		  AND start_datetime < $2
		  AND end_datetime > $3
		  AND status IN ('reserved', 'pending', 'confirmed')`,
		boatID, end, start)
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied seats: %w", err)
	}
	return occupied, nil
}

// ClaimNotification atomically flips the notification flag. It returns
// true only for the caller that performed the flip, so a message goes
// out once per booking no matter how many settlement events race.
func (r *BookingRepository) ClaimNotification(id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE bookings SET notification_sent = TRUE, updated_at = NOW()
		WHERE id = $1 AND notification_sent = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("failed to claim notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// SetGuideReminderSent marks the pre-departure guide reminder as delivered
func (r *BookingRepository) SetGuideReminderSent(id uuid.UUID) error {
	if _, err := r.db.Exec(`
		UPDATE bookings SET guide_reminder_sent = TRUE, updated_at = NOW()
		WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark guide reminder: %w", err)
	}
	return nil
}

// SetCalendarEventID stores the external calendar event for a booking
func (r *BookingRepository) SetCalendarEventID(id uuid.UUID, eventID string) error {
	if _, err := r.db.Exec(`
		UPDATE bookings SET calendar_event_id = $2, updated_at = NOW()
		WHERE id = $1`, id, eventID); err != nil {
		return fmt.Errorf("failed to store calendar event: %w", err)
	}
	return nil
}

// ClearCalendarEventID drops the calendar event reference after deletion
func (r *BookingRepository) ClearCalendarEventID(id uuid.UUID) error {
	if _, err := r.db.Exec(`
		UPDATE bookings SET calendar_event_id = NULL, updated_at = NOW()
		WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear calendar event: %w", err)
	}
	return nil
}

// ListStaleReserved returns reserved bookings created before the cutoff
// whose deposit never arrived
func (r *BookingRepository) ListStaleReserved(createdBefore time.Time) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	err := r.db.Select(&bookings, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'reserved' AND created_at < $1
		ORDER BY created_at`, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale reservations: %w", err)
	}
	return bookings, nil
}

// CancelStaleReserved cancels a reservation only if it is still reserved.
// The status guard makes the sweep safe against a deposit settling at
// the same moment.
func (r *BookingRepository) CancelStaleReserved(id uuid.UUID, reason string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE bookings SET
			status = 'cancelled',
			cancelled_at = NOW(),
			cancellation_reason = $2,
			updated_at = NOW()
		WHERE id = $1 AND status = 'reserved'`, id, reason)
	if err != nil {
		return false, fmt.Errorf("failed to cancel stale reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListGuideRemindersDue returns confirmed guide bookings departing inside
// the window that have not been reminded yet
func (r *BookingRepository) ListGuideRemindersDue(from, to time.Time) ([]*models.Booking, error) {
	bookings := []*models.Booking{}
	err := r.db.Select(&bookings, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'confirmed'
		  AND guide_id IS NOT NULL
		  AND guide_reminder_sent = FALSE
		  AND start_datetime BETWEEN $1 AND $2
		ORDER BY start_datetime`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list guide reminders: %w", err)
	}
	return bookings, nil
}
