package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookTokenHeader carries the shared webhook secret. Senders that cannot
// set headers pass it as the token query parameter instead.
const WebhookTokenHeader = "X-Webhook-Token"

// WebhookTokenMiddleware rejects webhook calls that do not carry the shared
// secret. An empty token disables the webhook endpoints.
func WebhookTokenMiddleware(token string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "webhooks are not configured"})
			return
		}

		presented := c.GetHeader(WebhookTokenHeader)
		if presented == "" {
			presented = c.Query("token")
		}
		if presented == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing webhook token"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			logger.Warn("Rejected webhook", zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}

		c.Next()
	}
}
