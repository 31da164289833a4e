package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusReserved  BookingStatus = "reserved"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingKind identifies who created the booking and how it is priced
type BookingKind string

const (
	BookingKindCustomer      BookingKind = "customer"
	BookingKindGuide         BookingKind = "guide"
	BookingKindHotel         BookingKind = "hotel"
	BookingKindOperatorBlock BookingKind = "operator_block"
)

// PaymentMethod identifies how the remaining amount is settled
type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
)

// Booking represents a seat reservation on a trip slot
type Booking struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	BoatID        int64       `db:"boat_id" json:"boat_id"`
	TripSlotID    int64       `db:"trip_slot_id" json:"trip_slot_id"`
	Kind          BookingKind `db:"kind" json:"kind"`
	StartDatetime time.Time   `db:"start_datetime" json:"start_datetime"`
	EndDatetime   time.Time   `db:"end_datetime" json:"end_datetime"`
	DurationHours int         `db:"duration_hours" json:"duration_hours"`

	CustomerID *uuid.UUID `db:"customer_id" json:"customer_id,omitempty"`
	GuideID    *uuid.UUID `db:"guide_id" json:"guide_id,omitempty"`
	HotelID    *uuid.UUID `db:"hotel_id" json:"hotel_id,omitempty"`
	GuestName  string     `db:"guest_name" json:"guest_name"`
	GuestPhone string     `db:"guest_phone" json:"guest_phone"`
	HeadCount  int        `db:"head_count" json:"head_count"`

	PricePerPerson       float64 `db:"price_per_person" json:"price_per_person"`
	OriginalPrice        float64 `db:"original_price" json:"original_price"`
	DiscountPercent      float64 `db:"discount_percent" json:"discount_percent"`
	DiscountAmount       float64 `db:"discount_amount" json:"discount_amount"`
	PromoCode            *string `db:"promo_code" json:"promo_code,omitempty"`
	PromoDiscount        float64 `db:"promo_discount" json:"promo_discount"`
	HotelCashbackPercent float64 `db:"hotel_cashback_percent" json:"hotel_cashback_percent"`
	HotelCashbackAmount  float64 `db:"hotel_cashback_amount" json:"hotel_cashback_amount"`
	TotalPrice           float64 `db:"total_price" json:"total_price"`
	Deposit              float64 `db:"deposit" json:"deposit"`
	RemainingAmount      float64 `db:"remaining_amount" json:"remaining_amount"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	Status        BookingStatus `db:"status" json:"status"`

	NotificationSent  bool    `db:"notification_sent" json:"-"`
	GuideReminderSent bool    `db:"guide_reminder_sent" json:"-"`
	CalendarEventID   *string `db:"calendar_event_id" json:"-"`

	Notes              *string    `db:"notes" json:"notes,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CountsTowardOccupancy reports whether the booking holds seats.
// Operator blocks count; they just carry no price.
func (b *Booking) CountsTowardOccupancy() bool {
	switch b.Status {
	case BookingStatusReserved, BookingStatusPending, BookingStatusConfirmed:
		return true
	default:
		return false
	}
}

// IsSeatBlock reports whether the booking is an operator seat block
func (b *Booking) IsSeatBlock() bool {
	return b.Kind == BookingKindOperatorBlock
}

// IsActive reports whether the booking is still live (not cancelled or completed)
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled && b.Status != BookingStatusCompleted
}

// DepositPaid reports whether the deposit stage has been settled
func (b *Booking) DepositPaid() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed || b.Status == BookingStatusCompleted
}

// ApplyDepositPaid moves a reserved booking to pending. It is a no-op
// when the deposit was already applied, so a duplicate settlement event
// does not double-advance the booking.
func (b *Booking) ApplyDepositPaid() bool {
	if b.Status != BookingStatusReserved {
		return false
	}
	b.Status = BookingStatusPending
	return true
}

// ApplyFullPaid marks the booking fully paid and confirms it. The deposit
// absorbs the whole total and the remaining amount drops to zero.
func (b *Booking) ApplyFullPaid() bool {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted {
		return false
	}
	if b.Status == BookingStatusConfirmed && b.RemainingAmount == 0 {
		return false
	}
	b.Deposit = b.TotalPrice
	b.RemainingAmount = 0
	b.PaymentMethod = PaymentMethodOnline
	b.Status = BookingStatusConfirmed
	return true
}

// CheckIn moves a confirmed booking to completed
func (b *Booking) CheckIn() error {
	if b.Status != BookingStatusConfirmed {
		return &TransitionError{BookingID: b.ID.String(), Current: b.Status, Requested: BookingStatusCompleted}
	}
	b.Status = BookingStatusCompleted
	return nil
}

// Cancel marks the booking cancelled with an optional reason
func (b *Booking) Cancel(reason *string, now time.Time) error {
	if b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted {
		return &TransitionError{BookingID: b.ID.String(), Current: b.Status, Requested: BookingStatusCancelled}
	}
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.CancellationReason = reason
	return nil
}

// TimeUntilDeparture returns how long remains before the trip starts
func (b *Booking) TimeUntilDeparture(now time.Time) time.Duration {
	return b.StartDatetime.Sub(now)
}

// StatusChange describes a booking status transition for post-commit hooks
type StatusChange struct {
	Previous BookingStatus
	Next     BookingStatus
}

// Changed reports whether the transition actually moved the status
func (c StatusChange) Changed() bool {
	return c.Previous != c.Next
}
