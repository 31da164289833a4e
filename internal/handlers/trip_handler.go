package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/models"
	"github.com/seatours/boat-booking-backend/internal/services"
)

// TripHandler handles the public trip search
type TripHandler struct {
	tripService *services.TripService
	logger      *logrus.Logger
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService *services.TripService, logger *logrus.Logger) *TripHandler {
	return &TripHandler{tripService: tripService, logger: logger}
}

// Search godoc
// @Summary Search available trips
// @Tags trips
// @Produce json
// @Param boat_id query int false "Filter by boat"
// @Param date_from query string false "Earliest departure date (2006-01-02)"
// @Param date_to query string false "Latest departure date (2006-01-02)"
// @Param min_seats query int false "Minimum free seats"
// @Success 200 {array} models.AvailableTrip
// @Router /api/v1/trips/available [get]
func (h *TripHandler) Search(c *gin.Context) {
	filter := models.TripSearchFilter{
		OnlyOpen: true,
		Limit:    100,
	}

	if v := c.Query("boat_id"); v != "" {
		boatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "boat_id must be a number"})
			return
		}
		filter.BoatID = &boatID
	}
	if v := c.Query("date_from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be formatted as 2006-01-02"})
			return
		}
		filter.DateFrom = &from
	}
	if v := c.Query("date_to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be formatted as 2006-01-02"})
			return
		}
		filter.DateTo = &to
	}
	if v := c.Query("min_seats"); v != "" {
		minSeats, err := strconv.Atoi(v)
		if err != nil || minSeats < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_seats must be a positive number"})
			return
		}
		filter.MinSeats = minSeats
	}

	trips, err := h.tripService.Search(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips, "count": len(trips)})
}
