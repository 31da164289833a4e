package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seatours/boat-booking-backend/internal/models"
)

// respondError maps domain errors to HTTP responses
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		validationErr *models.ValidationError
		capacityErr   *models.CapacityError
		transitionErr *models.TransitionError
		windowErr     *models.CancellationWindowError
		rateErr       *models.RateNotFoundError
		notFoundErr   *models.NotFoundError
		gatewayErr    *models.GatewayError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":           "not enough seats available",
			"requested_seats": capacityErr.Requested,
			"available_seats": capacityErr.Available,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.As(err, &windowErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": windowErr.Error()})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": rateErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &gatewayErr):
		logger.WithError(err).Error("Payment gateway error")
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway is unavailable, please try again"})
	default:
		logger.WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
