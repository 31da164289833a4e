package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/middleware"
	"github.com/seatours/boat-booking-backend/internal/models"
	"github.com/seatours/boat-booking-backend/internal/services"
)

// BookingHandler handles booking lifecycle endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, logger: logger}
}

// Create godoc
// @Summary Create a booking or preview its price
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.BookingResponse
// @Success 200 {object} models.PricePreviewResponse "Preview mode"
// @Failure 409 {object} map[string]interface{} "Not enough seats"
// @Security BearerAuth
// @Router /api/v1/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Preview {
		preview, err := h.bookingService.Preview(user.Actor(), &req)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, preview)
		return
	}

	response, err := h.bookingService.Create(user.Actor(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// BlockSeats godoc
// @Summary Block seats on a trip without a paying guest
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body models.BlockSeatsRequest true "Block request"
// @Success 201 {object} models.Booking
// @Security BearerAuth
// @Router /api/v1/bookings/block [post]
func (h *BookingHandler) BlockSeats(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req models.BlockSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, err := h.bookingService.BlockSeats(user.Actor(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// List godoc
// @Summary List bookings visible to the caller
// @Tags bookings
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {array} models.Booking
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	filter := models.BookingFilter{Limit: 100}
	if v := c.Query("status"); v != "" {
		status := models.BookingStatus(v)
		filter.Status = &status
	}

	bookings, err := h.bookingService.List(user.Actor(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// Get godoc
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.bookingService.Get(user.Actor(), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} models.CancelBookingResponse
// @Failure 422 {object} map[string]string "Inside the cancellation cutoff"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req models.CancelBookingRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	response, err := h.bookingService.Cancel(user.Actor(), bookingID, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// PayRemaining godoc
// @Summary Pay the remaining amount for a booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.PayRemainingRequest false "Payment method"
// @Success 200 {object} models.BookingResponse
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/pay-remaining [post]
func (h *BookingHandler) PayRemaining(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req models.PayRemainingRequest
	_ = c.ShouldBindJSON(&req) // defaults to online payment

	response, err := h.bookingService.PayRemaining(user.Actor(), bookingID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// CheckIn godoc
// @Summary Check in a confirmed booking at boarding
// @Tags bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	user := middleware.GetUserContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := h.bookingService.CheckIn(user.Actor(), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
