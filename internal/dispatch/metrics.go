package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueuedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "jobs_enqueued_total",
			Help:      "Total outbound messages enqueued.",
		},
		[]string{"kind"},
	)

	jobsProcessedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "jobs_processed_total",
			Help:      "Total outbound messages processed by the drain loop.",
		},
		[]string{"kind", "status"}, // status: sent, failed, unavailable
	)

	sendDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "send_duration_seconds",
			Help:      "Duration of channel send calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	pendingJobsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dispatch",
			Name:      "pending_jobs",
			Help:      "Outbound messages waiting for the drain loop.",
		},
	)
)
