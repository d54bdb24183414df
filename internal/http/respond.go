package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"formdraft/internal/domain"
)

// writeError maps a service error to its HTTP status. Anything outside the
// domain taxonomy is a storage failure: the detail is logged and the client
// gets a generic message.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		h.logger.WithError(err).Debug("unauthorized request")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, domain.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already exists"})
	case errors.Is(err, domain.ErrInvalidStep):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid step"})
	case errors.Is(err, domain.ErrValidation):
		msg := "Invalid request"
		var invalid *domain.ValidationError
		if errors.As(err, &invalid) {
			msg = invalid.Message
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": msg})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error(fallback)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
