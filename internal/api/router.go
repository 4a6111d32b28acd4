package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/api/handlers"
	"github.com/fuscashop/ordernotify/internal/api/middleware"
	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/internal/service"
)

// Services groups what the handlers depend on
type Services struct {
	Notifications service.NotificationService
	QA            service.QAService
	Questions     service.QuestionService
	Settings      *service.Settings
	Channel       *channel.StateTracker
	Queue         handlers.PendingCounter
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svcs *Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"channel": svcs.Channel.Current(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webhooks from the storefront and the messaging gateway
	webhooks := router.Group("/webhook")
	webhooks.Use(middleware.RateLimitMiddleware(
		middleware.NewRateLimiter(cfg.Webhook.RateLimitRPS, cfg.Webhook.RateLimitBurst),
		logger,
	))
	webhooks.Use(middleware.WebhookTokenMiddleware(cfg.Webhook.Token, logger))
	webhooks.Use(middleware.BodyLimitMiddleware(cfg.Webhook.MaxBodyBytes))
	{
		webhooks.POST("/yampi", handlers.HandleYampiWebhook(svcs.Notifications, logger))
		webhooks.POST("/channel", handlers.HandleChannelWebhook(cfg.Channel.Instance, svcs.Channel, svcs.QA, logger))
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.Admin.APIKeyHash, logger))
	{
		admin.GET("/qa/config", handlers.HandleGetQAConfig(svcs.Settings))
		admin.PUT("/qa/config", handlers.HandleUpdateQAConfig(svcs.Settings, logger))
		admin.GET("/qa/questions", handlers.HandleListQuestions(svcs.Questions, logger))
		admin.POST("/qa/questions", handlers.HandleCreateQuestion(svcs.Questions, logger))
		admin.GET("/qa/questions/:id", handlers.HandleGetQuestion(svcs.Questions, logger))
		admin.PUT("/qa/questions/:id", handlers.HandleUpdateQuestion(svcs.Questions, logger))
		admin.DELETE("/qa/questions/:id", handlers.HandleDeleteQuestion(svcs.Questions, logger))
		admin.GET("/qa/stats", handlers.HandleQuestionStats(svcs.Questions, logger))
		admin.POST("/qa/test", handlers.HandleTestMatch(svcs.Questions, logger))
		admin.GET("/qa/media", handlers.HandleListAllMedia(svcs.Questions, logger))
		admin.GET("/qa/media/:kind", handlers.HandleListMedia(svcs.Questions, logger))
		admin.GET("/channel/state", handlers.HandleChannelState(svcs.Channel, svcs.Queue))
		admin.GET("/notifications", handlers.HandleListNotifications(svcs.Notifications, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
