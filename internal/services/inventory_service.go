package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// InventoryService computes live seat availability for trip windows
type InventoryService struct {
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(bookingRepo *database.BookingRepository, logger *logrus.Logger) *InventoryService {
	return &InventoryService{bookingRepo: bookingRepo, logger: logger}
}

// AvailableSeats returns how many seats remain free on the slot's boat
// for the given window, against the slot's effective capacity. Overlap
// is strict interval intersection: a trip ending exactly when another
// starts does not collide. Seats held by reserved, pending and confirmed
// bookings all count, including operator blocks.
func (s *InventoryService) AvailableSeats(boat *models.Boat, slot *models.TripSlot, start, end time.Time) (int, error) {
	occupied, err := s.bookingRepo.OccupiedSeats(boat.ID, start, end)
	if err != nil {
		return 0, err
	}
	capacity := slot.EffectiveCapacity(boat)
	available := capacity - occupied
	if available < 0 {
		// Overbooking can only appear through out-of-band data edits
		s.logger.WithFields(logrus.Fields{
			"boat_id":  boat.ID,
			"occupied": occupied,
			"capacity": capacity,
		}).Warn("Occupied seats exceed capacity")
		available = 0
	}
	return available, nil
}

// AvailableSeatsForSlot resolves the slot window and returns availability
func (s *InventoryService) AvailableSeatsForSlot(boat *models.Boat, slot *models.TripSlot) (int, error) {
	start, end, err := slot.Window()
	if err != nil {
		return 0, err
	}
	return s.AvailableSeats(boat, slot, start, end)
}
