package models

import (
	"time"

	"github.com/google/uuid"
)

// BoatRate holds the per-person price for a boat and trip duration
type BoatRate struct {
	ID             int64     `db:"id" json:"id"`
	BoatID         int64     `db:"boat_id" json:"boat_id"`
	DurationHours  int       `db:"duration_hours" json:"duration_hours"`
	PricePerPerson float64   `db:"price_per_person" json:"price_per_person"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GuideDiscount is a percentage discount an operator grants a guide
type GuideDiscount struct {
	ID              int64     `db:"id" json:"id"`
	GuideID         uuid.UUID `db:"guide_id" json:"guide_id"`
	OwnerID         uuid.UUID `db:"owner_id" json:"owner_id"`
	DiscountPercent float64   `db:"discount_percent" json:"discount_percent"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// HotelCashback is a percentage kickback an operator grants a hotel.
// Unlike a guide discount it does not reduce the customer price; it is
// computed over the final total and settled with the hotel off-platform.
type HotelCashback struct {
	ID              int64     `db:"id" json:"id"`
	HotelID         uuid.UUID `db:"hotel_id" json:"hotel_id"`
	OwnerID         uuid.UUID `db:"owner_id" json:"owner_id"`
	CashbackPercent float64   `db:"cashback_percent" json:"cashback_percent"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// PromoCode is a fixed-amount discount code
type PromoCode struct {
	ID        int64      `db:"id" json:"id"`
	Code      string     `db:"code" json:"code"`
	Amount    float64    `db:"amount" json:"amount"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	ExpiresAt *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsUsable reports whether the code can be applied right now
func (p *PromoCode) IsUsable(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
		return false
	}
	return true
}

// PriceBreakdown is the fully itemised quote for a booking
type PriceBreakdown struct {
	PricePerPerson       float64 `json:"price_per_person"`
	HeadCount            int     `json:"head_count"`
	DurationHours        int     `json:"duration_hours"`
	OriginalPrice        float64 `json:"original_price"`
	DiscountPercent      float64 `json:"discount_percent"`
	DiscountAmount       float64 `json:"discount_amount"`
	PromoCode            *string `json:"promo_code,omitempty"`
	PromoDiscount        float64 `json:"promo_discount"`
	HotelCashbackPercent float64 `json:"hotel_cashback_percent"`
	HotelCashbackAmount  float64 `json:"hotel_cashback_amount"`
	TotalPrice           float64 `json:"total_price"`
	Deposit              float64 `json:"deposit"`
	RemainingAmount      float64 `json:"remaining_amount"`
	GuideCommission      float64 `json:"guide_commission,omitempty"`
}
