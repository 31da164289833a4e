package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/models"
)

func newBookingFixture(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	logger := quietLogger()

	cfg := config.BookingConfig{
		DepositPerPerson:         1000,
		GuideCommissionPerPerson: 500,
		CancelCutoff:             3 * time.Hour,
		RefundCutoff:             72 * time.Hour,
		ReservationTTL:           30 * time.Minute,
	}

	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	slotRepo := database.NewTripSlotRepository(db)
	pricingRepo := database.NewPricingRepository(db)

	service := NewBookingService(
		bookingRepo, paymentRepo, slotRepo,
		NewInventoryService(bookingRepo, logger),
		NewPricingService(pricingRepo, cfg, logger),
		NewTBankService(config.TBankConfig{}, logger), // unconfigured
		cfg, logger,
	)
	return service, mock
}

func actorFor(booking *models.Booking) Actor {
	return Actor{UserID: *booking.CustomerID, Role: models.RoleCustomer}
}

func TestCancelBooking(t *testing.T) {
	t.Run("RefundableOutside72Hours", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(100*time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectExec("UPDATE bookings SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
		// Refund path loads the booking's payments
		mock.ExpectQuery("FROM payments").
			WillReturnRows(sqlmock.NewRows(paymentTestColumns))

		response, err := service.Cancel(actorFor(booking), booking.ID, nil)
		require.NoError(t, err)

		assert.True(t, response.RefundDeposit)
		assert.Equal(t, 5000.0, response.DepositAmount)
		assert.Equal(t, models.BookingStatusCancelled, response.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRefundBetweenCutoffs", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(40*time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectExec("UPDATE bookings SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		response, err := service.Cancel(actorFor(booking), booking.ID, nil)
		require.NoError(t, err)

		assert.False(t, response.RefundDeposit)
		assert.Equal(t, 0.0, response.DepositAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BlockedInsideThreeHours", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusConfirmed, time.Now().Add(2*time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectRollback()

		_, err := service.Cancel(actorFor(booking), booking.ID, nil)
		var windowErr *models.CancellationWindowError
		require.ErrorAs(t, err, &windowErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusCancelled, time.Now().Add(100*time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectRollback()

		_, err := service.Cancel(actorFor(booking), booking.ID, nil)
		var transitionErr *models.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})

	t.Run("NotFound", func(t *testing.T) {
		service, mock := newBookingFixture(t)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(bookingTestColumns))
		mock.ExpectRollback()

		_, err := service.Cancel(Actor{UserID: uuid.New(), Role: models.RoleCustomer}, uuid.New(), nil)
		var notFoundErr *models.NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("ReservedAlwaysRefundless", func(t *testing.T) {
		// A reserved booking has paid nothing; cancelling it can never
		// produce a refund even far before departure
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusReserved, time.Now().Add(200*time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectExec("UPDATE bookings SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		response, err := service.Cancel(actorFor(booking), booking.ID, nil)
		require.NoError(t, err)
		assert.False(t, response.RefundDeposit)
	})

	t.Run("StrangerCannotCancel", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(100*time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectRollback()

		_, err := service.Cancel(Actor{UserID: uuid.New(), Role: models.RoleCustomer}, booking.ID, nil)
		var notFoundErr *models.NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestCheckIn(t *testing.T) {
	operator := Actor{UserID: uuid.New(), Role: models.RoleBoatOwner}

	t.Run("ConfirmedBecomesCompleted", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusConfirmed, time.Now().Add(time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectExec("UPDATE bookings SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		var change models.StatusChange
		service.RegisterHook(func(b *models.Booking, c models.StatusChange) { change = c })

		result, err := service.CheckIn(operator, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCompleted, result.Status)
		assert.Equal(t, models.BookingStatusConfirmed, change.Previous)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("PendingCannotBoard", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(time.Hour))

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectRollback()

		_, err := service.CheckIn(operator, booking.ID)
		var transitionErr *models.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})

	t.Run("CustomerCannotCheckIn", func(t *testing.T) {
		service, _ := newBookingFixture(t)
		_, err := service.CheckIn(Actor{UserID: uuid.New(), Role: models.RoleCustomer}, uuid.New())
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestPayRemaining(t *testing.T) {
	t.Run("CashRecordedByOperator", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(48*time.Hour))
		operator := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

		// The booking is confirmed under a row lock; a webhook settling
		// the same remaining amount online waits for this commit
		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings WHERE id = \\$1 FOR UPDATE").
			WillReturnRows(bookingRows(booking))
		mock.ExpectExec("UPDATE bookings SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		response, err := service.PayRemaining(operator, booking.ID, &models.PayRemainingRequest{
			PaymentMethod: models.PaymentMethodCash,
		})
		require.NoError(t, err)

		assert.Equal(t, models.BookingStatusConfirmed, response.Booking.Status)
		assert.Equal(t, 0.0, response.Booking.RemainingAmount)
		assert.Equal(t, response.Booking.TotalPrice, response.Booking.Deposit)
		assert.Equal(t, models.PaymentMethodCash, response.Booking.PaymentMethod)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CustomerCannotRecordCash", func(t *testing.T) {
		// Rejected on role alone, before any row is touched
		service, _ := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(48*time.Hour))

		_, err := service.PayRemaining(actorFor(booking), booking.ID, &models.PayRemainingRequest{
			PaymentMethod: models.PaymentMethodCash,
		})
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("OnlineBlockedCloseToDeparture", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusPending, time.Now().Add(2*time.Hour))

		mock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRows(booking))

		_, err := service.PayRemaining(actorFor(booking), booking.ID, &models.PayRemainingRequest{
			PaymentMethod: models.PaymentMethodOnline,
		})
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("NothingToPayOnConfirmed", func(t *testing.T) {
		service, mock := newBookingFixture(t)
		booking := customerBooking(models.BookingStatusConfirmed, time.Now().Add(48*time.Hour))
		booking.RemainingAmount = 0

		mock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRows(booking))

		_, err := service.PayRemaining(actorFor(booking), booking.ID, &models.PayRemainingRequest{})
		var transitionErr *models.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})
}

func TestKindForRole(t *testing.T) {
	assert.Equal(t, models.BookingKindGuide, KindForRole(models.RoleGuide))
	assert.Equal(t, models.BookingKindHotel, KindForRole(models.RoleHotel))
	assert.Equal(t, models.BookingKindCustomer, KindForRole(models.RoleCustomer))
	assert.Equal(t, models.BookingKindCustomer, KindForRole(models.RoleAdmin))
}
