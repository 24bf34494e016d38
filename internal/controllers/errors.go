package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kalimx03/warrior-track-new/internal/services"
)

// abortServiceError maps service sentinels onto HTTP statuses. Anything
// outside the closed set is a 500 with the raw message suppressed.
func abortServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrNotEnrolled):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrSessionInactive),
		errors.Is(err, services.ErrSessionLocked):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrCodeExpired),
		errors.Is(err, services.ErrInvalidCode):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Verification failed",
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "request could not be processed",
		})
	}
}
