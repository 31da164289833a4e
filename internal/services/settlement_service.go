package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// SettlementService applies gateway payment events to bookings.
//
// The gateway retries webhooks and the client polls the status endpoint
// at the same time, so the same event arrives more than once, sometimes
// concurrently. Settlement serializes on a row lock over the payment and
// applies booking effects only on the transition where paid_at flips
// from null, which makes the whole operation exactly-once.
type SettlementService struct {
	paymentRepo *database.PaymentRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
	hooks       []TransitionHook
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *SettlementService {
	return &SettlementService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// RegisterHook adds a post-transition hook
func (s *SettlementService) RegisterHook(hook TransitionHook) {
	s.hooks = append(s.hooks, hook)
}

// SettlementEvent is a normalized gateway status update
type SettlementEvent struct {
	PaymentID    string
	Status       models.PaymentStatus
	ErrorCode    *string
	ErrorMessage *string
}

// Settle records a payment status update and advances the booking when
// the payment first becomes paid. Safe to call any number of times with
// the same event.
func (s *SettlementService) Settle(event SettlementEvent) error {
	tx, err := s.paymentRepo.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer tx.Rollback()

	// 1. Lock the payment row; concurrent duplicates queue up here
	payment, err := s.paymentRepo.GetByPaymentIDForUpdate(tx, event.PaymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return &models.NotFoundError{Resource: "payment", ID: event.PaymentID}
	}

	payment.Status = event.Status
	if event.ErrorCode != nil {
		payment.ErrorCode = event.ErrorCode
	}
	if event.ErrorMessage != nil {
		payment.ErrorMessage = event.ErrorMessage
	}

	// 2. The paid_at gate: only the first paid event gets past this
	if !payment.IsPaid() || payment.PaidAt != nil {
		if err := s.paymentRepo.UpdateTx(tx, payment); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit settlement: %w", err)
		}
		if payment.IsFailed() {
			s.logger.WithFields(logrus.Fields{
				"payment_id": event.PaymentID,
				"status":     event.Status,
			}).Warn("Payment failed")
		}
		return nil
	}

	now := time.Now()
	payment.PaidAt = &now

	// 3. Advance the booking under its own row lock
	booking, err := s.bookingRepo.GetByIDForUpdate(tx, payment.BookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return &models.NotFoundError{Resource: "booking", ID: payment.BookingID.String()}
	}

	previous := booking.Status
	var changed bool
	switch payment.Purpose {
	case models.PaymentPurposeDeposit:
		changed = booking.ApplyDepositPaid()
	case models.PaymentPurposeRemaining, models.PaymentPurposeFull:
		changed = booking.ApplyFullPaid()
	}

	if changed {
		if err := s.bookingRepo.UpdateTx(tx, booking); err != nil {
			return err
		}
	}
	if err := s.paymentRepo.UpdateTx(tx, payment); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": event.PaymentID,
		"booking_id": booking.ID,
		"purpose":    payment.Purpose,
		"previous":   previous,
		"status":     booking.Status,
	}).Info("Payment settled")

	// 4. Side effects run after commit, never while holding locks
	if changed {
		for _, hook := range s.hooks {
			hook(booking, models.StatusChange{Previous: previous, Next: booking.Status})
		}
	}
	return nil
}

// Payment returns the stored payment for a gateway payment id
func (s *SettlementService) Payment(paymentID string) (*models.Payment, error) {
	return s.paymentRepo.GetByPaymentID(paymentID)
}

// SettleFromGateway polls the gateway for the payment's current state
// and settles it. Used by the client-facing status endpoint as a backup
// path when webhooks are delayed.
func (s *SettlementService) SettleFromGateway(tbank *TBankService, paymentID string) (*models.Payment, error) {
	status, err := tbank.GetState(paymentID)
	if err != nil {
		return nil, err
	}
	if status == models.PaymentStatusAuthorized {
		// Two-stage payment held at the bank: capture it now
		captured, err := tbank.ConfirmPayment(paymentID)
		if err != nil {
			s.logger.WithError(err).WithField("payment_id", paymentID).Warn("Failed to capture authorized payment")
		} else {
			status = captured
		}
	}
	if err := s.Settle(SettlementEvent{PaymentID: paymentID, Status: status}); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByPaymentID(paymentID)
}
