package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/service"
	"github.com/fuscashop/ordernotify/internal/yampi"
)

// processingTimeout bounds the background work started by one webhook. A
// notification waits for every part to leave the dispatch queue.
const processingTimeout = 10 * time.Minute

// readBody reads the request body, answering 413 when a body limit is in
// place and the body exceeds it.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return nil, false
	}
	return body, true
}

// HandleYampiWebhook handles POST /webhook/yampi. The storefront gets its
// 200 right away; the notification flow runs in the background.
func HandleYampiWebhook(notifications service.NotificationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok {
			return
		}

		event, err := yampi.Parse(body)
		if err != nil {
			logger.Warn("Rejected order webhook", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload", "details": err.Error()})
			return
		}

		webhooksReceivedCounter.WithLabelValues("yampi", orderEventLabel(event.EventType)).Inc()
		logger.Info("Order webhook received",
			zap.String("event", string(event.EventType)),
			zap.String("order_id", event.OrderID),
		)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
			defer cancel()

			result, err := notifications.Notify(ctx, event)
			if err != nil {
				logger.Error("Failed to notify customer", zap.String("order_id", event.OrderID), zap.Error(err))
				return
			}
			logger.Info("Order webhook processed",
				zap.String("order_id", result.OrderID),
				zap.String("template", result.Template),
				zap.Int("sent", result.Sent),
				zap.Int("failed", result.Failed),
			)
		}()

		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}

// HandleChannelWebhook handles POST /webhook/channel. Connection events
// update the session state; inbound messages go to the Q&A flow in the
// background. Events from any instance other than ours are acknowledged
// and dropped.
func HandleChannelWebhook(
	instance string,
	tracker *channel.StateTracker,
	qa service.QAService,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readBody(c)
		if !ok {
			return
		}

		event, err := channel.ParseEvent(body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload", "details": err.Error()})
			return
		}
		webhooksReceivedCounter.WithLabelValues("channel", channelEventLabel(event)).Inc()

		if event.Instance != instance {
			logger.Warn("Ignoring event from another instance",
				zap.String("event", channelEventLabel(event)),
				zap.String("ip", c.ClientIP()),
			)
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		switch event.Event {
		case channel.EventConnectionUpdate, channel.EventQRCodeUpdated:
			state, ok := event.State()
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid connection event"})
				return
			}
			if tracker.Set(state) {
				logger.Info("Channel state changed", zap.String("state", string(state)))
			}

		case channel.EventMessagesUpsert:
			msg, err := event.Message()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message event", "details": err.Error()})
				return
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), processingTimeout)
				defer cancel()

				result, err := qa.HandleInbound(ctx, msg)
				if err != nil {
					logger.Error("Failed to answer inbound message", zap.String("from", msg.From), zap.Error(err))
					return
				}
				if result.Ignored != "" {
					logger.Debug("Inbound message ignored", zap.String("reason", result.Ignored))
				}
			}()

		default:
			logger.Debug("Ignoring gateway event", zap.String("event", channelEventLabel(event)))
		}

		c.JSON(http.StatusOK, gin.H{"status": "received"})
	}
}
