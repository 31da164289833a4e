package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/seatours/boat-booking-backend/internal/models"
)

var bookingTestColumns = []string{
	"id", "boat_id", "trip_slot_id", "kind", "start_datetime", "end_datetime", "duration_hours",
	"customer_id", "guide_id", "hotel_id", "guest_name", "guest_phone", "head_count",
	"price_per_person", "original_price", "discount_percent", "discount_amount",
	"promo_code", "promo_discount", "hotel_cashback_percent", "hotel_cashback_amount",
	"total_price", "deposit", "remaining_amount", "payment_method", "status",
	"notification_sent", "guide_reminder_sent", "calendar_event_id",
	"notes", "cancelled_at", "cancellation_reason", "created_at", "updated_at",
}

func bookingRows(b *models.Booking) *sqlmock.Rows {
	var customerID, guideID, hotelID interface{}
	if b.CustomerID != nil {
		customerID = b.CustomerID.String()
	}
	if b.GuideID != nil {
		guideID = b.GuideID.String()
	}
	if b.HotelID != nil {
		hotelID = b.HotelID.String()
	}

	return sqlmock.NewRows(bookingTestColumns).AddRow(
		b.ID.String(), b.BoatID, b.TripSlotID, string(b.Kind), b.StartDatetime, b.EndDatetime, b.DurationHours,
		customerID, guideID, hotelID, b.GuestName, b.GuestPhone, b.HeadCount,
		b.PricePerPerson, b.OriginalPrice, b.DiscountPercent, b.DiscountAmount,
		b.PromoCode, b.PromoDiscount, b.HotelCashbackPercent, b.HotelCashbackAmount,
		b.TotalPrice, b.Deposit, b.RemainingAmount, string(b.PaymentMethod), string(b.Status),
		b.NotificationSent, b.GuideReminderSent, b.CalendarEventID,
		b.Notes, b.CancelledAt, b.CancellationReason, b.CreatedAt, b.UpdatedAt,
	)
}

var paymentTestColumns = []string{
	"id", "booking_id", "order_id", "payment_id", "purpose", "amount", "status",
	"payment_url", "error_code", "error_message", "paid_at", "created_at", "updated_at",
}

func paymentRows(p *models.Payment) *sqlmock.Rows {
	return sqlmock.NewRows(paymentTestColumns).AddRow(
		p.ID.String(), p.BookingID.String(), p.OrderID, p.PaymentID, string(p.Purpose), p.Amount, string(p.Status),
		p.PaymentURL, p.ErrorCode, p.ErrorMessage, p.PaidAt, p.CreatedAt, p.UpdatedAt,
	)
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func customerBooking(status models.BookingStatus, departure time.Time) *models.Booking {
	customerID := uuid.New()
	now := time.Now()
	return &models.Booking{
		ID:              uuid.New(),
		BoatID:          7,
		TripSlotID:      3,
		Kind:            models.BookingKindCustomer,
		StartDatetime:   departure,
		EndDatetime:     departure.Add(3 * time.Hour),
		DurationHours:   3,
		CustomerID:      &customerID,
		GuestName:       "Anna",
		GuestPhone:      "+79990001122",
		HeadCount:       5,
		PricePerPerson:  4000,
		OriginalPrice:   20000,
		TotalPrice:      20000,
		Deposit:         5000,
		RemainingAmount: 15000,
		PaymentMethod:   models.PaymentMethodOnline,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
