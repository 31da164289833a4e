package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Request DTOs
// ============================================================================

// CreateBookingRequest is the payload for creating or previewing a booking
type CreateBookingRequest struct {
	TripSlotID int64   `json:"trip_slot_id" binding:"required"`
	HeadCount  int     `json:"head_count" binding:"required"`
	GuestName  string  `json:"guest_name"`
	GuestPhone string  `json:"guest_phone"`
	PromoCode  *string `json:"promo_code,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	// Preview computes the price breakdown without reserving seats
	Preview bool `json:"preview"`
}

// Validate checks the request fields
func (r *CreateBookingRequest) Validate() error {
	if r.TripSlotID <= 0 {
		return NewValidationError("trip_slot_id", "must be positive")
	}
	if r.HeadCount < 1 {
		return NewValidationError("head_count", "must be at least 1")
	}
	if !r.Preview {
		if r.GuestName == "" {
			return NewValidationError("guest_name", "is required")
		}
		if r.GuestPhone == "" {
			return NewValidationError("guest_phone", "is required")
		}
	}
	return nil
}

// BlockSeatsRequest is the payload for an operator seat block
type BlockSeatsRequest struct {
	TripSlotID int64   `json:"trip_slot_id" binding:"required"`
	HeadCount  int     `json:"head_count" binding:"required"`
	Notes      *string `json:"notes,omitempty"`
}

// Validate checks the request fields
func (r *BlockSeatsRequest) Validate() error {
	if r.TripSlotID <= 0 {
		return NewValidationError("trip_slot_id", "must be positive")
	}
	if r.HeadCount < 1 {
		return NewValidationError("head_count", "must be at least 1")
	}
	return nil
}

// CancelBookingRequest is the payload for cancelling a booking
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// PayRemainingRequest is the payload for settling the remaining amount
type PayRemainingRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// LoginRequest is the payload for email/password authentication
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the payload for refreshing an access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// BookingFilter narrows booking list queries
type BookingFilter struct {
	CustomerID *uuid.UUID
	GuideID    *uuid.UUID
	HotelID    *uuid.UUID
	OwnerID    *uuid.UUID
	BoatID     *int64
	Status     *BookingStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// TripSearchFilter narrows the trip availability search
type TripSearchFilter struct {
	BoatID   *int64
	DateFrom *time.Time
	DateTo   *time.Time
	MinSeats int
	OnlyOpen bool
	Limit    int
	Offset   int
}

// ============================================================================
// Response DTOs
// ============================================================================

// BookingResponse is a booking plus payment instructions for the client
type BookingResponse struct {
	Booking    *Booking `json:"booking"`
	PaymentURL string   `json:"payment_url,omitempty"`
}

// PricePreviewResponse is the quote returned for a preview request
type PricePreviewResponse struct {
	Breakdown *PriceBreakdown `json:"breakdown"`
	Available int             `json:"available_seats"`
}

// CancelBookingResponse reports the outcome of a cancellation
type CancelBookingResponse struct {
	BookingID     uuid.UUID     `json:"booking_id"`
	Status        BookingStatus `json:"status"`
	RefundDeposit bool          `json:"refund_deposit"`
	DepositAmount float64       `json:"deposit_amount"`
}

// AvailableTrip is a searchable trip slot with live seat availability
type AvailableTrip struct {
	Slot           *TripSlot `json:"slot"`
	BoatName       string    `json:"boat_name"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	StartDatetime  time.Time `json:"start_datetime"`
	EndDatetime    time.Time `json:"end_datetime"`
	DurationHours  int       `json:"duration_hours"`
	PricePerPerson float64   `json:"price_per_person"`
}

// TokenPair is the authentication response
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
