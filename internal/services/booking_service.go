package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

// Actor identifies who is performing a booking operation
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

// TransitionHook runs after a booking status change has been committed.
// Hooks receive the previous and the new status so they can decide what
// the change means instead of re-deriving it from the booking row.
type TransitionHook func(booking *models.Booking, change models.StatusChange)

// BookingService owns the booking lifecycle
type BookingService struct {
	bookingRepo *database.BookingRepository
	paymentRepo *database.PaymentRepository
	slotRepo    *database.TripSlotRepository
	inventory   *InventoryService
	pricing     *PricingService
	tbank       *TBankService
	cfg         config.BookingConfig
	logger      *logrus.Logger
	hooks       []TransitionHook
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo *database.BookingRepository,
	paymentRepo *database.PaymentRepository,
	slotRepo *database.TripSlotRepository,
	inventory *InventoryService,
	pricing *PricingService,
	tbank *TBankService,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		slotRepo:    slotRepo,
		inventory:   inventory,
		pricing:     pricing,
		tbank:       tbank,
		cfg:         cfg,
		logger:      logger,
	}
}

// RegisterHook adds a post-transition hook
func (s *BookingService) RegisterHook(hook TransitionHook) {
	s.hooks = append(s.hooks, hook)
}

// FireHooks runs all registered hooks for a committed status change
func (s *BookingService) FireHooks(booking *models.Booking, change models.StatusChange) {
	for _, hook := range s.hooks {
		hook(booking, change)
	}
}

// KindForRole maps an actor role to the booking kind it creates
func KindForRole(role models.UserRole) models.BookingKind {
	switch role {
	case models.RoleGuide:
		return models.BookingKindGuide
	case models.RoleHotel:
		return models.BookingKindHotel
	default:
		return models.BookingKindCustomer
	}
}

// resolvedSlot bundles a trip slot with its boat and concrete window
type resolvedSlot struct {
	slot     *models.TripSlot
	boat     *models.Boat
	start    time.Time
	end      time.Time
	duration int
}

func (s *BookingService) resolveSlot(slotID int64) (*resolvedSlot, error) {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil || !slot.IsActive {
		return nil, &models.NotFoundError{Resource: "trip slot", ID: fmt.Sprintf("%d", slotID)}
	}

	boat, err := s.slotRepo.GetBoatByID(slot.BoatID)
	if err != nil {
		return nil, err
	}
	if boat == nil || !boat.IsActive {
		return nil, &models.NotFoundError{Resource: "boat", ID: fmt.Sprintf("%d", slot.BoatID)}
	}

	start, end, err := slot.Window()
	if err != nil {
		return nil, err
	}
	duration, err := slot.DurationHours()
	if err != nil {
		return nil, err
	}

	return &resolvedSlot{slot: slot, boat: boat, start: start, end: end, duration: duration}, nil
}

// Preview computes the quote and live availability without holding seats
func (s *BookingService) Preview(actor Actor, req *models.CreateBookingRequest) (*models.PricePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resolved, err := s.resolveSlot(req.TripSlotID)
	if err != nil {
		return nil, err
	}

	available, err := s.inventory.AvailableSeats(resolved.boat, resolved.slot, resolved.start, resolved.end)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.pricing.Quote(QuoteInput{
		Boat:      resolved.boat,
		Kind:      KindForRole(actor.Role),
		ActorID:   actor.UserID,
		HeadCount: req.HeadCount,
		Duration:  resolved.duration,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return nil, err
	}

	return &models.PricePreviewResponse{Breakdown: breakdown, Available: available}, nil
}

// Create reserves seats and initializes the deposit payment.
//
// The reservation is inserted under a capacity re-check inside a
// transaction; two concurrent requests for the last seats cannot both
// succeed. If the payment gateway then refuses the deposit, the fresh
// reservation is cancelled so the seats are released immediately.
func (s *BookingService) Create(actor Actor, req *models.CreateBookingRequest) (*models.BookingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.HeadCount > 100 {
		return nil, models.NewValidationError("head_count", "is unreasonably large")
	}

	resolved, err := s.resolveSlot(req.TripSlotID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if resolved.start.Before(now) {
		return nil, models.NewValidationError("trip_slot_id", "trip has already departed")
	}

	kind := KindForRole(actor.Role)
	breakdown, err := s.pricing.Quote(QuoteInput{
		Boat:      resolved.boat,
		Kind:      kind,
		ActorID:   actor.UserID,
		HeadCount: req.HeadCount,
		Duration:  resolved.duration,
		PromoCode: req.PromoCode,
	})
	if err != nil {
		return nil, err
	}

	booking := s.assembleBooking(actor, kind, req, resolved, breakdown)
	if err := s.bookingRepo.CreateReserved(booking, resolved.slot.EffectiveCapacity(resolved.boat)); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"boat_id":    booking.BoatID,
		"head_count": booking.HeadCount,
		"total":      booking.TotalPrice,
	}).Info("Booking reserved")

	s.FireHooks(booking, models.StatusChange{Previous: "", Next: models.BookingStatusReserved})

	paymentURL, err := s.initDepositPayment(booking, breakdown)
	if err != nil {
		// Release the seats: a reservation with no way to pay is dead
		reason := "payment initialization failed"
		if cancelErr := booking.Cancel(&reason, time.Now()); cancelErr == nil {
			if updErr := s.bookingRepo.Update(booking); updErr != nil {
				s.logger.WithError(updErr).WithField("booking_id", booking.ID).
					Error("Failed to release reservation after gateway error")
			} else {
				s.FireHooks(booking, models.StatusChange{
					Previous: models.BookingStatusReserved,
					Next:     models.BookingStatusCancelled,
				})
			}
		}
		return nil, err
	}

	return &models.BookingResponse{Booking: booking, PaymentURL: paymentURL}, nil
}

func (s *BookingService) assembleBooking(
	actor Actor,
	kind models.BookingKind,
	req *models.CreateBookingRequest,
	resolved *resolvedSlot,
	breakdown *models.PriceBreakdown,
) *models.Booking {
	booking := &models.Booking{
		ID:            uuid.New(),
		BoatID:        resolved.boat.ID,
		TripSlotID:    resolved.slot.ID,
		Kind:          kind,
		StartDatetime: resolved.start,
		EndDatetime:   resolved.end,
		DurationHours: resolved.duration,
		GuestName:     req.GuestName,
		GuestPhone:    req.GuestPhone,
		HeadCount:     req.HeadCount,

		PricePerPerson:       breakdown.PricePerPerson,
		OriginalPrice:        breakdown.OriginalPrice,
		DiscountPercent:      breakdown.DiscountPercent,
		DiscountAmount:       breakdown.DiscountAmount,
		PromoCode:            breakdown.PromoCode,
		PromoDiscount:        breakdown.PromoDiscount,
		HotelCashbackPercent: breakdown.HotelCashbackPercent,
		HotelCashbackAmount:  breakdown.HotelCashbackAmount,
		TotalPrice:           breakdown.TotalPrice,
		Deposit:              breakdown.Deposit,
		RemainingAmount:      breakdown.RemainingAmount,

		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.BookingStatusReserved,
		Notes:         req.Notes,
	}

	actorID := actor.UserID
	switch kind {
	case models.BookingKindGuide:
		booking.GuideID = &actorID
	case models.BookingKindHotel:
		booking.HotelID = &actorID
	default:
		booking.CustomerID = &actorID
	}
	return booking
}

func (s *BookingService) initDepositPayment(booking *models.Booking, breakdown *models.PriceBreakdown) (string, error) {
	if !s.tbank.IsConfigured() {
		s.logger.Warn("Payment gateway not configured, reservation left unpaid")
		return "", nil
	}

	purpose := models.PaymentPurposeDeposit
	amount := breakdown.Deposit
	if breakdown.RemainingAmount == 0 {
		purpose = models.PaymentPurposeFull
		amount = breakdown.TotalPrice
	}

	orderID := fmt.Sprintf("boat-%s", uuid.New())
	description := fmt.Sprintf("Boat trip %s, %d guests", booking.StartDatetime.Format("02.01.2006"), booking.HeadCount)

	result, err := s.tbank.InitPayment(orderID, amount, description, "", booking.GuestPhone)
	if err != nil {
		return "", err
	}

	payment := &models.Payment{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		OrderID:    orderID,
		PaymentID:  result.PaymentID,
		Purpose:    purpose,
		Amount:     amount,
		Status:     result.Status,
		PaymentURL: &result.PaymentURL,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return "", err
	}
	return result.PaymentURL, nil
}

// BlockSeats creates an operator seat block. Blocks hold seats like any
// confirmed booking but carry no price and never expire.
func (s *BookingService) BlockSeats(actor Actor, req *models.BlockSeatsRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resolved, err := s.resolveSlot(req.TripSlotID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && resolved.boat.OwnerID != actor.UserID {
		return nil, models.NewValidationError("trip_slot_id", "boat does not belong to you")
	}

	booking := &models.Booking{
		ID:            uuid.New(),
		BoatID:        resolved.boat.ID,
		TripSlotID:    resolved.slot.ID,
		Kind:          models.BookingKindOperatorBlock,
		StartDatetime: resolved.start,
		EndDatetime:   resolved.end,
		DurationHours: resolved.duration,
		GuestName:     "Blocked by operator",
		HeadCount:     req.HeadCount,
		PaymentMethod: models.PaymentMethodCash,
		Status:        models.BookingStatusConfirmed,
		Notes:         req.Notes,
	}

	if err := s.bookingRepo.CreateReserved(booking, resolved.slot.EffectiveCapacity(resolved.boat)); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"boat_id":    booking.BoatID,
		"head_count": booking.HeadCount,
	}).Info("Seats blocked by operator")
	return booking, nil
}

// Cancel cancels a booking under the cancellation policy.
//
// Cancellation closes 3 hours before departure. The deposit is returned
// only when more than 72 hours remain; between the two cutoffs the
// booking is cancelled but the deposit is kept. Operator blocks can be
// removed at any time.
func (s *BookingService) Cancel(actor Actor, bookingID uuid.UUID, reason *string) (*models.CancelBookingResponse, error) {
	tx, err := s.bookingRepo.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.GetByIDForUpdate(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &models.NotFoundError{Resource: "booking", ID: bookingID.String()}
	}
	if err := s.authorize(actor, booking); err != nil {
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCompleted {
		return nil, &models.TransitionError{
			BookingID: bookingID.String(),
			Current:   booking.Status,
			Requested: models.BookingStatusCancelled,
		}
	}

	now := time.Now()
	untilDeparture := booking.TimeUntilDeparture(now)
	if !booking.IsSeatBlock() && untilDeparture < s.cfg.CancelCutoff {
		return nil, &models.CancellationWindowError{
			BookingID: bookingID.String(),
			Cutoff:    s.cfg.CancelCutoff.String(),
		}
	}

	refund := booking.DepositPaid() && untilDeparture > s.cfg.RefundCutoff

	previous := booking.Status
	if err := booking.Cancel(reason, now); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateTx(tx, booking); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"refund":     refund,
	}).Info("Booking cancelled")

	s.FireHooks(booking, models.StatusChange{Previous: previous, Next: models.BookingStatusCancelled})

	response := &models.CancelBookingResponse{
		BookingID: bookingID,
		Status:    models.BookingStatusCancelled,
	}
	if refund {
		response.RefundDeposit = true
		response.DepositAmount = booking.Deposit
		s.refundDeposit(booking)
	}
	return response, nil
}

// refundDeposit asks the gateway to return the deposit payment. Failure
// is logged, not returned: the booking is already cancelled and the
// refund can be retried manually.
func (s *BookingService) refundDeposit(booking *models.Booking) {
	payments, err := s.paymentRepo.ListByBooking(booking.ID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to load payments for refund")
		return
	}
	for _, payment := range payments {
		if payment.PaidAt == nil || !payment.IsPaid() {
			continue
		}
		status, err := s.tbank.CancelPayment(payment.PaymentID, payment.Amount)
		if err != nil {
			s.logger.WithError(err).WithField("payment_id", payment.PaymentID).Error("Failed to refund payment")
			continue
		}
		payment.Status = status
		if err := s.paymentRepo.Update(payment); err != nil {
			s.logger.WithError(err).WithField("payment_id", payment.PaymentID).Error("Failed to store refund status")
		}
	}
}

// PayRemaining settles the remaining amount. Online payment goes through
// the gateway and confirms on the settlement webhook; cash and card are
// recorded immediately by the operator.
func (s *BookingService) PayRemaining(actor Actor, bookingID uuid.UUID, req *models.PayRemainingRequest) (*models.BookingResponse, error) {
	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodOnline
	}

	switch method {
	case models.PaymentMethodOnline:
		booking, err := s.bookingRepo.GetByID(bookingID)
		if err != nil {
			return nil, err
		}
		if err := s.checkPayable(actor, booking, bookingID); err != nil {
			return nil, err
		}
		// Too close to departure the webhook may not land in time;
		// the operator settles in person at boarding instead
		if booking.TimeUntilDeparture(time.Now()) < s.cfg.CancelCutoff {
			return nil, models.NewValidationError("payment_method", "trip departs too soon, settle in person at boarding")
		}
		return s.initRemainingPayment(booking)
	case models.PaymentMethodCash, models.PaymentMethodCard:
		// In-person settlement recorded by operator staff
		if actor.Role != models.RoleAdmin && actor.Role != models.RoleBoatOwner {
			return nil, models.NewValidationError("payment_method", "in-person payment is recorded by the operator")
		}
		return s.recordInPersonPayment(actor, bookingID, method)
	default:
		return nil, models.NewValidationError("payment_method", "must be online, cash or card")
	}
}

func (s *BookingService) checkPayable(actor Actor, booking *models.Booking, bookingID uuid.UUID) error {
	if booking == nil {
		return &models.NotFoundError{Resource: "booking", ID: bookingID.String()}
	}
	if err := s.authorize(actor, booking); err != nil {
		return err
	}
	if booking.Status != models.BookingStatusPending {
		return &models.TransitionError{
			BookingID: bookingID.String(),
			Current:   booking.Status,
			Requested: models.BookingStatusConfirmed,
		}
	}
	if booking.RemainingAmount <= 0 {
		return models.NewValidationError("booking", "nothing remains to pay")
	}
	return nil
}

// recordInPersonPayment confirms the booking under a row lock so it
// cannot race a webhook settling the same remaining amount online.
func (s *BookingService) recordInPersonPayment(actor Actor, bookingID uuid.UUID, method models.PaymentMethod) (*models.BookingResponse, error) {
	tx, err := s.bookingRepo.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.GetByIDForUpdate(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPayable(actor, booking, bookingID); err != nil {
		return nil, err
	}

	previous := booking.Status
	booking.ApplyFullPaid()
	booking.PaymentMethod = method
	if err := s.bookingRepo.UpdateTx(tx, booking); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	s.FireHooks(booking, models.StatusChange{Previous: previous, Next: booking.Status})
	return &models.BookingResponse{Booking: booking}, nil
}

func (s *BookingService) initRemainingPayment(booking *models.Booking) (*models.BookingResponse, error) {
	if !s.tbank.IsConfigured() {
		return nil, &models.GatewayError{Operation: "Init", Message: "gateway is not configured"}
	}

	orderID := fmt.Sprintf("boat-%s", uuid.New())
	description := fmt.Sprintf("Remaining payment, trip %s", booking.StartDatetime.Format("02.01.2006"))

	result, err := s.tbank.InitPayment(orderID, booking.RemainingAmount, description, "", booking.GuestPhone)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		OrderID:    orderID,
		PaymentID:  result.PaymentID,
		Purpose:    models.PaymentPurposeRemaining,
		Amount:     booking.RemainingAmount,
		Status:     result.Status,
		PaymentURL: &result.PaymentURL,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}
	return &models.BookingResponse{Booking: booking, PaymentURL: result.PaymentURL}, nil
}

// CheckIn marks a confirmed booking completed at boarding
func (s *BookingService) CheckIn(actor Actor, bookingID uuid.UUID) (*models.Booking, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleBoatOwner {
		return nil, models.NewValidationError("actor", "only the operator can check in guests")
	}

	tx, err := s.bookingRepo.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.GetByIDForUpdate(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &models.NotFoundError{Resource: "booking", ID: bookingID.String()}
	}

	previous := booking.Status
	if err := booking.CheckIn(); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateTx(tx, booking); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit check-in: %w", err)
	}

	s.logger.WithField("booking_id", bookingID).Info("Booking checked in")
	s.FireHooks(booking, models.StatusChange{Previous: previous, Next: booking.Status})
	return booking, nil
}

// Get retrieves a booking the actor is allowed to see
func (s *BookingService) Get(actor Actor, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, &models.NotFoundError{Resource: "booking", ID: bookingID.String()}
	}
	if err := s.authorize(actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// List returns bookings scoped to what the actor may see
func (s *BookingService) List(actor Actor, filter models.BookingFilter) ([]*models.Booking, error) {
	actorID := actor.UserID
	switch actor.Role {
	case models.RoleAdmin:
		// Admins see everything the filter asks for
	case models.RoleBoatOwner:
		filter.OwnerID = &actorID
	case models.RoleGuide:
		filter.GuideID = &actorID
	case models.RoleHotel:
		filter.HotelID = &actorID
	default:
		filter.CustomerID = &actorID
	}
	return s.bookingRepo.List(filter)
}

func (s *BookingService) authorize(actor Actor, booking *models.Booking) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleBoatOwner {
		boat, err := s.slotRepo.GetBoatByID(booking.BoatID)
		if err != nil {
			return err
		}
		if boat != nil && boat.OwnerID == actor.UserID {
			return nil
		}
		return &models.NotFoundError{Resource: "booking", ID: booking.ID.String()}
	}

	actorID := actor.UserID
	if booking.CustomerID != nil && *booking.CustomerID == actorID {
		return nil
	}
	if booking.GuideID != nil && *booking.GuideID == actorID {
		return nil
	}
	if booking.HotelID != nil && *booking.HotelID == actorID {
		return nil
	}
	return &models.NotFoundError{Resource: "booking", ID: booking.ID.String()}
}
