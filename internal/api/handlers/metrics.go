package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fuscashop/ordernotify/internal/channel"
	"github.com/fuscashop/ordernotify/internal/domain"
)

var webhooksReceivedCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "webhook",
		Name:      "received_total",
		Help:      "Total webhooks received by source and event.",
	},
	[]string{"source", "event"},
)

// unknownEventLabel stands in for any event name the service does not
// handle, keeping the label set fixed.
const unknownEventLabel = "unknown"

func orderEventLabel(t domain.EventType) string {
	if !t.IsValid() {
		return unknownEventLabel
	}
	return string(t)
}

func channelEventLabel(e *channel.Event) string {
	if !e.Known() {
		return unknownEventLabel
	}
	return e.Event
}
