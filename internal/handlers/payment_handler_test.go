package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatours/boat-booking-backend/internal/config"
	"github.com/seatours/boat-booking-backend/internal/database"
	"github.com/seatours/boat-booking-backend/internal/middleware"
	"github.com/seatours/boat-booking-backend/internal/models"
	"github.com/seatours/boat-booking-backend/internal/services"
)

var paymentColumns = []string{
	"id", "booking_id", "order_id", "payment_id", "purpose", "amount", "status",
	"payment_url", "error_code", "error_message", "paid_at", "created_at", "updated_at",
}

func newWebhookFixture(t *testing.T) (*gin.Engine, *services.TBankService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tbank := services.NewTBankService(config.TBankConfig{
		TerminalKey: "term",
		Password:    "secret",
	}, logger)
	settlement := services.NewSettlementService(
		database.NewPaymentRepository(sqlxDB),
		database.NewBookingRepository(sqlxDB),
		logger,
	)
	handler := NewPaymentHandler(settlement, tbank, nil, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/webhook", handler.Webhook)
	return router, tbank, mock
}

func postWebhook(router *gin.Engine, payload map[string]interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook(t *testing.T) {
	t.Run("RejectsBadSignature", func(t *testing.T) {
		router, _, _ := newWebhookFixture(t)

		w := postWebhook(router, map[string]interface{}{
			"TerminalKey": "term",
			"PaymentId":   4242,
			"Status":      "CONFIRMED",
			"Token":       "forged",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("AcknowledgesUnknownPayment", func(t *testing.T) {
		// A signed notification for a payment we never created must not
		// trigger endless gateway retries
		router, tbank, mock := newWebhookFixture(t)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM payments WHERE payment_id = \\$1 FOR UPDATE").
			WillReturnRows(sqlmock.NewRows(paymentColumns))
		mock.ExpectRollback()

		payload := map[string]interface{}{
			"TerminalKey": "term",
			"OrderId":     "boat-unknown",
			"PaymentId":   4242,
			"Status":      "CONFIRMED",
			"Success":     true,
		}
		payload["Token"] = tbank.GenerateToken(payload)

		w := postWebhook(router, payload)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RejectsMalformedBody", func(t *testing.T) {
		router, _, _ := newWebhookFixture(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("not json")))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

var bookingColumns = []string{
	"id", "boat_id", "trip_slot_id", "kind", "start_datetime", "end_datetime", "duration_hours",
	"customer_id", "guide_id", "hotel_id", "guest_name", "guest_phone", "head_count",
	"price_per_person", "original_price", "discount_percent", "discount_amount",
	"promo_code", "promo_discount", "hotel_cashback_percent", "hotel_cashback_amount",
	"total_price", "deposit", "remaining_amount", "payment_method", "status",
	"notification_sent", "guide_reminder_sent", "calendar_event_id",
	"notes", "cancelled_at", "cancellation_reason", "created_at", "updated_at",
}

func newStatusFixture(t *testing.T, caller *middleware.UserContext) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	bookingRepo := database.NewBookingRepository(sqlxDB)
	paymentRepo := database.NewPaymentRepository(sqlxDB)
	slotRepo := database.NewTripSlotRepository(sqlxDB)
	pricingRepo := database.NewPricingRepository(sqlxDB)

	tbank := services.NewTBankService(config.TBankConfig{TerminalKey: "term", Password: "secret"}, logger)
	inventory := services.NewInventoryService(bookingRepo, logger)
	pricing := services.NewPricingService(pricingRepo, config.BookingConfig{DepositPerPerson: 1000}, logger)
	bookingService := services.NewBookingService(
		bookingRepo, paymentRepo, slotRepo,
		inventory, pricing, tbank,
		config.BookingConfig{DepositPerPerson: 1000, CancelCutoff: 3 * time.Hour, RefundCutoff: 72 * time.Hour},
		logger,
	)
	settlement := services.NewSettlementService(paymentRepo, bookingRepo, logger)
	handler := NewPaymentHandler(settlement, tbank, bookingService, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/payments/:payment_id/status", func(c *gin.Context) {
		c.Set(middleware.UserContextKey, caller)
		handler.CheckStatus(c)
	})
	return router, mock
}

func TestCheckStatus(t *testing.T) {
	t.Run("StrangerCannotTriggerSettlement", func(t *testing.T) {
		// The booking check runs before any gateway call: a caller who
		// guesses a payment id gets a 404 and nothing is captured or
		// settled on their behalf
		caller := &middleware.UserContext{UserID: uuid.New(), Role: models.RoleCustomer}
		router, mock := newStatusFixture(t, caller)

		bookingID := uuid.New()
		ownerOfBooking := uuid.New()
		now := time.Now()

		mock.ExpectQuery("FROM payments WHERE payment_id = \\$1").
			WillReturnRows(sqlmock.NewRows(paymentColumns).AddRow(
				uuid.New().String(), bookingID.String(), "boat-1", "4242", "deposit", 5000.0, "NEW",
				nil, nil, nil, nil, now, now))
		mock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).AddRow(
				bookingID.String(), 7, 3, "customer", now.Add(96*time.Hour), now.Add(99*time.Hour), 3,
				ownerOfBooking.String(), nil, nil, "Anna", "+79990001122", 5,
				4000.0, 20000.0, 0.0, 0.0,
				nil, 0.0, 0.0, 0.0,
				20000.0, 5000.0, 15000.0, "online", "pending",
				false, false, nil,
				nil, nil, nil, now, now))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/payments/4242/status", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownPaymentReturns404", func(t *testing.T) {
		caller := &middleware.UserContext{UserID: uuid.New(), Role: models.RoleCustomer}
		router, mock := newStatusFixture(t, caller)

		mock.ExpectQuery("FROM payments WHERE payment_id = \\$1").
			WillReturnRows(sqlmock.NewRows(paymentColumns))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/payments/9999/status", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStringValue(t *testing.T) {
	assert.Equal(t, "4242", stringValue(float64(4242)))
	assert.Equal(t, "abc", stringValue("abc"))
	assert.Equal(t, "", stringValue(nil))
	assert.Equal(t, "true", stringValue(true))
}
