package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/seatours/boat-booking-backend/internal/models"
)

// PricingRepository handles rates, discounts, cashbacks and promo codes
type PricingRepository struct {
	db *sqlx.DB
}

// NewPricingRepository creates a new pricing repository
func NewPricingRepository(db *sqlx.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// GetRate returns the per-person rate for a boat and duration, or nil
// when no rate is configured
func (r *PricingRepository) GetRate(boatID int64, durationHours int) (*models.BoatRate, error) {
	var rate models.BoatRate
	err := r.db.Get(&rate, `
		SELECT id, boat_id, duration_hours, price_per_person, created_at, updated_at
		FROM boat_rates WHERE boat_id = $1 AND duration_hours = $2`, boatID, durationHours)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}
	return &rate, nil
}

// GetGuideDiscount returns the active discount an owner grants a guide,
// or nil when none exists
func (r *PricingRepository) GetGuideDiscount(guideID, ownerID uuid.UUID) (*models.GuideDiscount, error) {
	var discount models.GuideDiscount
	err := r.db.Get(&discount, `
		SELECT id, guide_id, owner_id, discount_percent, is_active, created_at
		FROM guide_discounts
		WHERE guide_id = $1 AND owner_id = $2 AND is_active = TRUE`, guideID, ownerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guide discount: %w", err)
	}
	return &discount, nil
}

// GetHotelCashback returns the active cashback an owner grants a hotel,
// or nil when none exists
func (r *PricingRepository) GetHotelCashback(hotelID, ownerID uuid.UUID) (*models.HotelCashback, error) {
	var cashback models.HotelCashback
	err := r.db.Get(&cashback, `
		SELECT id, hotel_id, owner_id, cashback_percent, is_active, created_at
		FROM hotel_cashbacks
		WHERE hotel_id = $1 AND owner_id = $2 AND is_active = TRUE`, hotelID, ownerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel cashback: %w", err)
	}
	return &cashback, nil
}

// GetPromoCode looks up a promo code case-insensitively, or nil when
// the code does not exist
func (r *PricingRepository) GetPromoCode(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.Get(&promo, `
		SELECT id, code, amount, is_active, expires_at, created_at
		FROM promo_codes WHERE LOWER(code) = $1`, strings.ToLower(code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	return &promo, nil
}
