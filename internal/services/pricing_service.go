package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// PricingService computes booking quotes
type PricingService struct {
	pricingRepo *database.PricingRepository
	cfg         config.BookingConfig
	logger      *logrus.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(pricingRepo *database.PricingRepository, cfg config.BookingConfig, logger *logrus.Logger) *PricingService {
	return &PricingService{pricingRepo: pricingRepo, cfg: cfg, logger: logger}
}

// QuoteInput describes who is booking what
type QuoteInput struct {
	Boat      *models.Boat
	Kind      models.BookingKind
	ActorID   uuid.UUID
	HeadCount int
	Duration  int
	PromoCode *string
}

// Quote computes the full price breakdown for a booking.
//
// The order of application is fixed: the guide percentage discount comes
// off the original price first, then the fixed promo amount comes off
// the discounted price (capped so the total never goes negative). Hotel
// cashback is computed over the final total and does not change what
// the customer pays.
func (s *PricingService) Quote(input QuoteInput) (*models.PriceBreakdown, error) {
	if input.Kind == models.BookingKindOperatorBlock {
		return &models.PriceBreakdown{HeadCount: input.HeadCount, DurationHours: input.Duration}, nil
	}

	rate, err := s.pricingRepo.GetRate(input.Boat.ID, input.Duration)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, &models.RateNotFoundError{BoatID: input.Boat.ID, DurationHours: input.Duration}
	}

	breakdown := &models.PriceBreakdown{
		PricePerPerson: rate.PricePerPerson,
		HeadCount:      input.HeadCount,
		DurationHours:  input.Duration,
		OriginalPrice:  rate.PricePerPerson * float64(input.HeadCount),
	}

	// Guide percentage discount
	if input.Kind == models.BookingKindGuide {
		discount, err := s.pricingRepo.GetGuideDiscount(input.ActorID, input.Boat.OwnerID)
		if err != nil {
			return nil, err
		}
		if discount != nil {
			breakdown.DiscountPercent = discount.DiscountPercent
			breakdown.DiscountAmount = breakdown.OriginalPrice * discount.DiscountPercent / 100
		}
		breakdown.GuideCommission = s.cfg.GuideCommissionPerPerson * float64(input.HeadCount)
	}

	total := breakdown.OriginalPrice - breakdown.DiscountAmount

	// Fixed promo discount, capped at the remaining price
	if input.PromoCode != nil && *input.PromoCode != "" {
		promo, err := s.pricingRepo.GetPromoCode(*input.PromoCode)
		if err != nil {
			return nil, err
		}
		if promo == nil || !promo.IsUsable(time.Now()) {
			return nil, models.NewValidationError("promo_code", "is invalid or expired")
		}
		breakdown.PromoCode = &promo.Code
		breakdown.PromoDiscount = promo.Amount
		if breakdown.PromoDiscount > total {
			breakdown.PromoDiscount = total
		}
		total -= breakdown.PromoDiscount
	}

	// discount_amount carries the whole reduction, so total is always
	// original minus discount; the promo share stays in promo_discount
	breakdown.DiscountAmount += breakdown.PromoDiscount
	breakdown.TotalPrice = total

	// Hotel cashback over the final total
	if input.Kind == models.BookingKindHotel {
		cashback, err := s.pricingRepo.GetHotelCashback(input.ActorID, input.Boat.OwnerID)
		if err != nil {
			return nil, err
		}
		if cashback != nil {
			breakdown.HotelCashbackPercent = cashback.CashbackPercent
			breakdown.HotelCashbackAmount = total * cashback.CashbackPercent / 100
		}
	}

	// Deposit is fixed per person but never exceeds the total
	breakdown.Deposit = s.cfg.DepositPerPerson * float64(input.HeadCount)
	if breakdown.Deposit > total {
		breakdown.Deposit = total
	}
	breakdown.RemainingAmount = total - breakdown.Deposit

	return breakdown, nil
}
