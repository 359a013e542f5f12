package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jhawaritvik/CreatorPulse/internal/delivery"
	"github.com/jhawaritvik/CreatorPulse/internal/domain"
)

// currentUser returns the user id set by requireUser.
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// parseUUID parses a UUID path parameter, writing a 400 on failure.
func parseUUID(c *gin.Context, paramName, entityType string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + entityType + " ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// handleServiceError maps domain and delivery errors to HTTP statuses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, domain.ErrNoContent):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoActiveSources),
		errors.Is(err, domain.ErrNoRecipients),
		errors.Is(err, domain.ErrMissingScheduleTime),
		errors.Is(err, domain.ErrInvalidScheduleFormat),
		errors.Is(err, delivery.ErrAlreadySent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, delivery.ErrSendInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
