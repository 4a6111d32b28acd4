package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthMiddleware checks the bearer API key against the configured
// bcrypt hash. An empty hash disables the admin API.
func AdminAuthMiddleware(apiKeyHash string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKeyHash == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API is not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(strings.TrimSpace(parts[1]))); err != nil {
			logger.Warn("Rejected admin request", zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		c.Next()
	}
}
