package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/database"
)

// CronService runs the periodic background jobs: sweeping stale unpaid
// reservations and reminding guides about upcoming trips.
type CronService struct {
	cron        *cron.Cron
	bookingRepo *database.BookingRepository
	slotRepo    *database.TripSlotRepository
	userRepo    *database.UserRepository
	telegram    *TelegramService
	cfg         config.BookingConfig
	logger      *logrus.Logger
}

// NewCronService creates the scheduler
func NewCronService(
	bookingRepo *database.BookingRepository,
	slotRepo *database.TripSlotRepository,
	userRepo *database.UserRepository,
	telegram *TelegramService,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *CronService {
	return &CronService{
		cron:        cron.New(),
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		userRepo:    userRepo,
		telegram:    telegram,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start registers and launches the jobs
func (s *CronService) Start() error {
	// Stale reservations: every 10 minutes
	if _, err := s.cron.AddFunc("*/10 * * * *", s.SweepStaleReservations); err != nil {
		return fmt.Errorf("failed to schedule reservation sweep: %w", err)
	}
	// Guide reminders: daily at 09:00
	if _, err := s.cron.AddFunc("0 9 * * *", s.SendGuideReminders); err != nil {
		return fmt.Errorf("failed to schedule guide reminders: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Cron jobs started")
	return nil
}

// Stop halts the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron jobs stopped")
}

// SweepStaleReservations cancels reservations whose deposit never
// arrived within the TTL. The cancel is guarded on status, so a deposit
// settling concurrently wins the race and keeps the booking.
func (s *CronService) SweepStaleReservations() {
	cutoff := time.Now().Add(-s.cfg.ReservationTTL)
	stale, err := s.bookingRepo.ListStaleReserved(cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list stale reservations")
		return
	}

	cancelled := 0
	for _, booking := range stale {
		ok, err := s.bookingRepo.CancelStaleReserved(booking.ID, "reservation expired without payment")
		if err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to cancel stale reservation")
			continue
		}
		if ok {
			cancelled++
		}
	}

	if cancelled > 0 {
		s.logger.WithField("count", cancelled).Info("Expired stale reservations")
	}
}

// SendGuideReminders messages guides whose confirmed trips depart within
// the reminder window
func (s *CronService) SendGuideReminders() {
	now := time.Now()
	due, err := s.bookingRepo.ListGuideRemindersDue(now, now.Add(s.cfg.GuideReminderWindow))
	if err != nil {
		s.logger.WithError(err).Error("Failed to list guide reminders")
		return
	}

	for _, booking := range due {
		if booking.GuideID == nil {
			continue
		}
		guide, err := s.userRepo.GetByID(*booking.GuideID)
		if err != nil || guide == nil || guide.TelegramChatID == nil {
			continue
		}

		boatName := "boat"
		if boat, err := s.slotRepo.GetBoatByID(booking.BoatID); err == nil && boat != nil {
			boatName = boat.Name
		}

		if err := s.telegram.SendToUser(*guide.TelegramChatID, FormatGuideReminder(booking, boatName)); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Failed to send guide reminder")
			continue
		}
		if err := s.bookingRepo.SetGuideReminderSent(booking.ID); err != nil {
			s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to mark guide reminder sent")
		}
	}
}
