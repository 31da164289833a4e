package services

import (
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// TripService powers the public trip search
type TripService struct {
	slotRepo    *database.TripSlotRepository
	pricingRepo *database.PricingRepository
	inventory   *InventoryService
	logger      *logrus.Logger
}

// NewTripService creates a new trip service
func NewTripService(
	slotRepo *database.TripSlotRepository,
	pricingRepo *database.PricingRepository,
	inventory *InventoryService,
	logger *logrus.Logger,
) *TripService {
	return &TripService{
		slotRepo:    slotRepo,
		pricingRepo: pricingRepo,
		inventory:   inventory,
		logger:      logger,
	}
}

// Search returns active trip slots with live availability and the base
// per-person price. Slots whose boat has no rate for the duration are
// skipped; they cannot be booked anyway.
func (s *TripService) Search(filter models.TripSearchFilter) ([]*models.AvailableTrip, error) {
	slots, err := s.slotRepo.Search(filter)
	if err != nil {
		return nil, err
	}

	trips := make([]*models.AvailableTrip, 0, len(slots))
	for _, slot := range slots {
		boat, err := s.slotRepo.GetBoatByID(slot.BoatID)
		if err != nil {
			return nil, err
		}
		if boat == nil {
			continue
		}

		start, end, err := slot.Window()
		if err != nil {
			s.logger.WithError(err).WithField("slot_id", slot.ID).Warn("Skipping slot with invalid times")
			continue
		}
		duration, err := slot.DurationHours()
		if err != nil {
			continue
		}

		rate, err := s.pricingRepo.GetRate(boat.ID, duration)
		if err != nil {
			return nil, err
		}
		if rate == nil {
			continue
		}

		available, err := s.inventory.AvailableSeats(boat, slot, start, end)
		if err != nil {
			return nil, err
		}
		if filter.OnlyOpen && available < max(filter.MinSeats, 1) {
			continue
		}

		trips = append(trips, &models.AvailableTrip{
			Slot:           slot,
			BoatName:       boat.Name,
			Capacity:       slot.EffectiveCapacity(boat),
			AvailableSeats: available,
			StartDatetime:  start,
			EndDatetime:    end,
			DurationHours:  duration,
			PricePerPerson: rate.PricePerPerson,
		})
	}
	return trips, nil
}
