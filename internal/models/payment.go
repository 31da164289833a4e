package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus mirrors the T-Bank payment state machine
type PaymentStatus string

const (
	PaymentStatusNew             PaymentStatus = "NEW"
	PaymentStatusFormShowed      PaymentStatus = "FORM_SHOWED"
	PaymentStatusAuthorizing     PaymentStatus = "AUTHORIZING"
	PaymentStatusAuthorized      PaymentStatus = "AUTHORIZED"
	PaymentStatusConfirming      PaymentStatus = "CONFIRMING"
	PaymentStatusConfirmed       PaymentStatus = "CONFIRMED"
	PaymentStatusReversing       PaymentStatus = "REVERSING"
	PaymentStatusReversed        PaymentStatus = "REVERSED"
	PaymentStatusRefunding       PaymentStatus = "REFUNDING"
	PaymentStatusPartialRefunded PaymentStatus = "PARTIAL_REFUNDED"
	PaymentStatusRefunded        PaymentStatus = "REFUNDED"
	PaymentStatusRejected        PaymentStatus = "REJECTED"
	PaymentStatusDeadlineExpired PaymentStatus = "DEADLINE_EXPIRED"
)

// PaymentPurpose identifies which part of the booking total a payment covers
type PaymentPurpose string

const (
	PaymentPurposeDeposit   PaymentPurpose = "deposit"
	PaymentPurposeRemaining PaymentPurpose = "remaining"
	PaymentPurposeFull      PaymentPurpose = "full"
)

// Payment represents a single gateway payment attempt for a booking
type Payment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BookingID uuid.UUID `db:"booking_id" json:"booking_id"`

	OrderID    string         `db:"order_id" json:"order_id"`
	PaymentID  string         `db:"payment_id" json:"payment_id"`
	Purpose    PaymentPurpose `db:"purpose" json:"purpose"`
	Amount     float64        `db:"amount" json:"amount"`
	Status     PaymentStatus  `db:"status" json:"status"`
	PaymentURL *string        `db:"payment_url" json:"payment_url,omitempty"`

	ErrorCode    *string `db:"error_code" json:"error_code,omitempty"`
	ErrorMessage *string `db:"error_message" json:"error_message,omitempty"`

	// PaidAt is set exactly once, when the payment first reaches a paid
	// status. It gates the settlement side effects.
	PaidAt *time.Time `db:"paid_at" json:"paid_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsPaid reports whether the payment status counts as money captured.
// AUTHORIZED counts: on a one-stage terminal the funds are committed
// even before the gateway flips to CONFIRMED.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusConfirmed || p.Status == PaymentStatusAuthorized
}

// IsFailed reports whether the payment terminally failed
func (p *Payment) IsFailed() bool {
	switch p.Status {
	case PaymentStatusRejected, PaymentStatusReversed, PaymentStatusDeadlineExpired:
		return true
	default:
		return false
	}
}

// IsRefunded reports whether money went back to the customer
func (p *Payment) IsRefunded() bool {
	return p.Status == PaymentStatusRefunded || p.Status == PaymentStatusPartialRefunded
}
