package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/middleware"
	"github.com/seatours/boat-booking-backend/internal/models"
	"github.com/seatours/boat-booking-backend/internal/services"
)

// PaymentHandler handles gateway webhooks and payment status polling
type PaymentHandler struct {
	settlementService *services.SettlementService
	tbankService      *services.TBankService
	bookingService    *services.BookingService
	logger            *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	settlementService *services.SettlementService,
	tbankService *services.TBankService,
	bookingService *services.BookingService,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		settlementService: settlementService,
		tbankService:      tbankService,
		bookingService:    bookingService,
		logger:            logger,
	}
}

// Webhook godoc
// @Summary T-Bank payment notification webhook
// @Description Receives payment status notifications. The gateway keeps
// @Description retrying until it sees a plain-text OK, so the handler
// @Description acknowledges every authenticated delivery even when the
// @Description payment is unknown.
// @Tags payments
// @Accept json
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /api/v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.WithError(err).Warn("Malformed webhook payload")
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	if !h.tbankService.VerifyNotification(payload) {
		h.logger.WithField("order_id", payload["OrderId"]).Warn("Webhook signature mismatch")
		c.String(http.StatusForbidden, "invalid token")
		return
	}

	event := services.SettlementEvent{
		PaymentID: stringValue(payload["PaymentId"]),
		Status:    models.PaymentStatus(stringValue(payload["Status"])),
	}
	if code := stringValue(payload["ErrorCode"]); code != "" && code != "0" {
		event.ErrorCode = &code
	}
	if message := stringValue(payload["Message"]); message != "" {
		event.ErrorMessage = &message
	}

	if event.PaymentID == "" || event.Status == "" {
		h.logger.Warn("Webhook payload missing PaymentId or Status")
		c.String(http.StatusOK, "OK")
		return
	}

	if err := h.settlementService.Settle(event); err != nil {
		// Still acknowledge: an unknown payment will not become known
		// by retrying, and transient errors are recovered by the
		// status polling path
		h.logger.WithError(err).WithField("payment_id", event.PaymentID).Error("Failed to settle webhook event")
	}
	c.String(http.StatusOK, "OK")
}

// CheckStatus godoc
// @Summary Poll the gateway for a payment's status
// @Tags payments
// @Produce json
// @Param payment_id path string true "Gateway payment ID"
// @Success 200 {object} models.Payment
// @Security BearerAuth
// @Router /api/v1/payments/{payment_id}/status [get]
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	paymentID := c.Param("payment_id")
	if paymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id is required"})
		return
	}

	// The caller must be allowed to see the underlying booking before
	// any gateway call happens on their behalf
	payment, err := h.settlementService.Payment(paymentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	if _, err := h.bookingService.Get(user.Actor(), payment.BookingID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	payment, err = h.settlementService.SettleFromGateway(h.tbankService, paymentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// stringValue renders a JSON scalar the way the gateway formats it in
// URLs and signatures: integral numbers without a decimal point
func stringValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
