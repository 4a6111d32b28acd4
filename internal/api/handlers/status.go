package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/service"
)

// PendingCounter reports how many sends are waiting in the dispatch queue
type PendingCounter interface {
	Pending() int
}

// HandleChannelState handles GET /v1/admin/channel/state
func HandleChannelState(tracker *channel.StateTracker, queue PendingCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"state":         tracker.Current(),
			"since":         tracker.Since(),
			"ready":         tracker.Current() == channel.StateReady,
			"pending_sends": queue.Pending(),
		})
	}
}

// HandleListNotifications handles GET /v1/admin/notifications?order_id=
func HandleListNotifications(notifications service.NotificationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Query("order_id")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
			return
		}

		logs, err := notifications.ListByOrder(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err, logger, "list notifications")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order_id":      orderID,
			"notifications": logs,
			"count":         len(logs),
		})
	}
}
