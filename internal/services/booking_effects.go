package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// BookingEffects turns committed booking transitions into notifications
// and calendar updates. It is registered as a transition hook on both
// the booking and the settlement services, so every path through the
// lifecycle produces the same side effects.
type BookingEffects struct {
	bookingRepo *database.BookingRepository
	slotRepo    *database.TripSlotRepository
	userRepo    *database.UserRepository
	telegram    *TelegramService
	calendar    *CalendarService
	logger      *logrus.Logger
}

// NewBookingEffects creates the side-effect hook
func NewBookingEffects(
	bookingRepo *database.BookingRepository,
	slotRepo *database.TripSlotRepository,
	userRepo *database.UserRepository,
	telegram *TelegramService,
	calendar *CalendarService,
	logger *logrus.Logger,
) *BookingEffects {
	return &BookingEffects{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		userRepo:    userRepo,
		telegram:    telegram,
		calendar:    calendar,
		logger:      logger,
	}
}

// Hook returns the TransitionHook to register on lifecycle services
func (e *BookingEffects) Hook() TransitionHook {
	return func(booking *models.Booking, change models.StatusChange) {
		e.apply(booking, change)
	}
}

func (e *BookingEffects) apply(booking *models.Booking, change models.StatusChange) {
	if booking.IsSeatBlock() {
		return
	}

	boatName := e.boatName(booking.BoatID)

	switch {
	case change.Previous == "" && change.Next == models.BookingStatusReserved:
		e.onReserved(booking, boatName)
	case change.Next == models.BookingStatusPending:
		e.onDepositPaid(booking, boatName)
	case change.Next == models.BookingStatusConfirmed:
		e.onFullyPaid(booking, boatName)
	case change.Next == models.BookingStatusCancelled:
		e.onCancelled(booking, boatName)
	}
}

func (e *BookingEffects) onReserved(booking *models.Booking, boatName string) {
	if err := e.telegram.SendToChannel(FormatBookingCreated(booking, boatName)); err != nil {
		e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to announce new booking")
	}
}

// onDepositPaid runs once per booking: the notification flag is claimed
// atomically, so duplicate settlement deliveries and crash-retry loops
// cannot message the operator twice.
func (e *BookingEffects) onDepositPaid(booking *models.Booking, boatName string) {
	claimed, err := e.bookingRepo.ClaimNotification(booking.ID)
	if err != nil {
		e.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to claim notification flag")
		return
	}
	if claimed {
		message := FormatDepositPaid(booking, boatName)
		if err := e.telegram.SendToChannel(message); err != nil {
			e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send deposit notification")
		}
		e.telegram.NotifyRecipients(e.recipients(booking), message)
	}

	e.ensureCalendarEvent(booking, boatName)
}

func (e *BookingEffects) onFullyPaid(booking *models.Booking, boatName string) {
	message := FormatFullyPaid(booking, boatName)
	if err := e.telegram.SendToChannel(message); err != nil {
		e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send payment notification")
	}
	e.telegram.NotifyRecipients(e.recipients(booking), message)

	e.ensureCalendarEvent(booking, boatName)
}

func (e *BookingEffects) onCancelled(booking *models.Booking, boatName string) {
	if booking.CalendarEventID != nil {
		if err := e.calendar.DeleteEvent(*booking.CalendarEventID); err != nil {
			e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to delete calendar event")
		} else if err := e.bookingRepo.ClearCalendarEventID(booking.ID); err != nil {
			e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to clear calendar event id")
		}
	}

	text := "❌ <b>Booking cancelled</b>\n" + FormatBookingCreated(booking, boatName)
	if err := e.telegram.SendToChannel(text); err != nil {
		e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send cancellation notification")
	}
}

// ensureCalendarEvent creates the event on first paid transition and
// refreshes it afterwards as amounts and status change
func (e *BookingEffects) ensureCalendarEvent(booking *models.Booking, boatName string) {
	if !e.calendar.IsConfigured() {
		return
	}

	if booking.CalendarEventID == nil {
		eventID, err := e.calendar.CreateEvent(booking, boatName)
		if err != nil {
			e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to create calendar event")
			return
		}
		if eventID == "" {
			return
		}
		booking.CalendarEventID = &eventID
		if err := e.bookingRepo.SetCalendarEventID(booking.ID, eventID); err != nil {
			e.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to store calendar event id")
		}
		return
	}

	if err := e.calendar.UpdateEvent(*booking.CalendarEventID, booking, boatName); err != nil {
		e.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to update calendar event")
	}
}

// recipients collects every user attached to the booking plus the boat
// owner; NotifyRecipients deduplicates by user id
func (e *BookingEffects) recipients(booking *models.Booking) []*models.User {
	ids := []*uuid.UUID{booking.CustomerID, booking.GuideID, booking.HotelID}

	var users []*models.User
	for _, id := range ids {
		if id == nil {
			continue
		}
		user, err := e.userRepo.GetByID(*id)
		if err != nil {
			e.logger.WithError(err).WithField("user_id", *id).Warn("Failed to load notification recipient")
			continue
		}
		users = append(users, user)
	}

	if boat, err := e.slotRepo.GetBoatByID(booking.BoatID); err == nil && boat != nil {
		if owner, err := e.userRepo.GetByID(boat.OwnerID); err == nil {
			users = append(users, owner)
		}
	}
	return users
}

func (e *BookingEffects) boatName(boatID int64) string {
	boat, err := e.slotRepo.GetBoatByID(boatID)
	if err != nil || boat == nil {
		return "unknown boat"
	}
	return boat.Name
}
