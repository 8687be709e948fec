// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_lifecycle_transitions_total",
			Help: "Lifecycle events fired against listings, by outcome",
		},
		[]string{"event", "outcome"},
	)

	MirrorFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_mirror_failures_total",
			Help: "Application projection writes that failed after a listing write",
		},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_notification_failures_total",
			Help: "Notifications that could not be delivered",
		},
		[]string{"channel"},
	)

	CompletionPercent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "directory_completion_percent",
			Help:    "Profile completion recorded on each recompute",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "directory_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route", "status"},
	)
)

// Outcome labels for LifecycleTransitions.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)
