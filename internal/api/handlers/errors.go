package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/pkg/errors"
)

// respondError maps the typed errors to HTTP statuses. Anything unknown is
// logged and hidden behind a 500.
func respondError(c *gin.Context, err error, logger *zap.Logger, action string) {
	switch e := err.(type) {
	case *errors.ErrValidation:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "validation failed",
			"field":   e.Field,
			"details": e.Message,
		})
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Message})
	case *errors.ErrChannelUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": e.Error()})
	default:
		logger.Error("Failed to "+action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + action})
	}
}
