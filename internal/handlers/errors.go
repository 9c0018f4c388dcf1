package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sphere-events/sphere/internal/repository"
	"github.com/sphere-events/sphere/internal/rift"
	"github.com/sphere-events/sphere/internal/services"
)

// respondError maps domain errors onto HTTP statuses. Anything unclassified
// is an upstream failure and surfaces as a 500 with the message attached.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRSVPNotConfirmed),
		errors.Is(err, services.ErrPaymentPending):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrTicketAlreadySent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "alreadySent": true})
	case errors.Is(err, rift.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrRSVPNotFound),
		errors.Is(err, repository.ErrInvoiceNotFound),
		errors.Is(err, rift.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUserAlreadyExists),
		errors.Is(err, repository.ErrAlreadyRegistered),
		errors.Is(err, repository.ErrCapacityExceeded),
		errors.Is(err, rift.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
