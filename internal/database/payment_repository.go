package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/seatours/boat-booking-backend/internal/models"
)

const paymentColumns = `
	id, booking_id, order_id, payment_id, purpose, amount, status,
	payment_url, error_code, error_message, paid_at, created_at, updated_at`

// PaymentRepository handles payment persistence
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Begin starts a settlement transaction
func (r *PaymentRepository) Begin() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// Create inserts a new payment record
func (r *PaymentRepository) Create(payment *models.Payment) error {
	rows, err := r.db.NamedQuery(`
		INSERT INTO payments (
			id, booking_id, order_id, payment_id, purpose, amount, status, payment_url
		) VALUES (
			:id, :booking_id, :order_id, :payment_id, :purpose, :amount, :status, :payment_url
		) RETURNING created_at, updated_at`, payment)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan payment timestamps: %w", err)
		}
	}
	return rows.Err()
}

// GetByPaymentID retrieves a payment by the gateway's payment id
func (r *PaymentRepository) GetByPaymentID(paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Get(&payment, `SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1`, paymentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// GetByOrderID retrieves a payment by our order id
func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Get(&payment, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1`, orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// GetByPaymentIDForUpdate locks the payment row for the duration of the
// settlement transaction. Concurrent deliveries of the same gateway
// event queue up behind this lock.
func (r *PaymentRepository) GetByPaymentIDForUpdate(tx *sqlx.Tx, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := tx.Get(&payment, `SELECT `+paymentColumns+` FROM payments WHERE payment_id = $1 FOR UPDATE`, paymentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}
	return &payment, nil
}

const paymentUpdate = `
	UPDATE payments SET
		status = :status,
		error_code = :error_code,
		error_message = :error_message,
		paid_at = :paid_at,
		updated_at = NOW()
	WHERE id = :id`

// Update persists the mutable payment fields
func (r *PaymentRepository) Update(payment *models.Payment) error {
	if _, err := r.db.NamedExec(paymentUpdate, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// UpdateTx persists the mutable payment fields inside a transaction
func (r *PaymentRepository) UpdateTx(tx *sqlx.Tx, payment *models.Payment) error {
	if _, err := tx.NamedExec(paymentUpdate, payment); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// ListByBooking returns all payment attempts for a booking, oldest first
func (r *PaymentRepository) ListByBooking(bookingID uuid.UUID) ([]*models.Payment, error) {
	payments := []*models.Payment{}
	err := r.db.Select(&payments, `
		SELECT `+paymentColumns+` FROM payments
		WHERE booking_id = $1
		ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
