package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// CalendarService mirrors paid bookings into the operator's Google Calendar
type CalendarService struct {
	cfg     config.CalendarConfig
	service *calendar.Service
	logger  *logrus.Logger
}

// NewCalendarService creates the calendar client. A missing credentials
// file disables the integration instead of failing startup.
func NewCalendarService(ctx context.Context, cfg config.CalendarConfig, logger *logrus.Logger) *CalendarService {
	s := &CalendarService{cfg: cfg, logger: logger}

	if cfg.CredentialsFile == "" || cfg.CalendarID == "" {
		logger.Info("Google Calendar not configured, events disabled")
		return s
	}

	service, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarEventsScope))
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize Google Calendar client, events disabled")
		return s
	}
	s.service = service
	return s
}

// IsConfigured reports whether events will actually be created
func (s *CalendarService) IsConfigured() bool {
	return s.service != nil
}

// CreateEvent creates a calendar event for a booking and returns its id
func (s *CalendarService) CreateEvent(booking *models.Booking, boatName string) (string, error) {
	if !s.IsConfigured() {
		return "", nil
	}

	event := s.buildEvent(booking, boatName)
	created, err := s.service.Events.Insert(s.cfg.CalendarID, event).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create calendar event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"event_id":   created.Id,
	}).Info("Calendar event created")
	return created.Id, nil
}

// UpdateEvent refreshes an existing event after payment details change
func (s *CalendarService) UpdateEvent(eventID string, booking *models.Booking, boatName string) error {
	if !s.IsConfigured() || eventID == "" {
		return nil
	}

	event := s.buildEvent(booking, boatName)
	if _, err := s.service.Events.Update(s.cfg.CalendarID, eventID, event).Do(); err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes the event for a cancelled booking
func (s *CalendarService) DeleteEvent(eventID string) error {
	if !s.IsConfigured() || eventID == "" {
		return nil
	}
	if err := s.service.Events.Delete(s.cfg.CalendarID, eventID).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

func (s *CalendarService) buildEvent(booking *models.Booking, boatName string) *calendar.Event {
	description := fmt.Sprintf(
		"Guests: %d\nName: %s\nPhone: %s\nTotal: %.0f ₽\nDeposit: %.0f ₽\nRemaining: %.0f ₽\nStatus: %s",
		booking.HeadCount,
		booking.GuestName,
		booking.GuestPhone,
		booking.TotalPrice,
		booking.Deposit,
		booking.RemainingAmount,
		booking.Status,
	)

	return &calendar.Event{
		Summary:     fmt.Sprintf("%s - %d guests (%s)", boatName, booking.HeadCount, booking.GuestName),
		Description: description,
		Start: &calendar.EventDateTime{
			DateTime: booking.StartDatetime.Format("2006-01-02T15:04:05-07:00"),
		},
		End: &calendar.EventDateTime{
			DateTime: booking.EndDatetime.Format("2006-01-02T15:04:05-07:00"),
		},
	}
}
