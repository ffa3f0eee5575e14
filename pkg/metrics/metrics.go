package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitcrew_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// InvitesIssued counts invitation tokens generated.
	InvitesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pitcrew_invites_issued_total",
			Help: "Total number of group invitations issued",
		},
	)

	// InvitesAccepted counts invitation acceptances.
	InvitesAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pitcrew_invites_accepted_total",
			Help: "Total number of group invitations accepted",
		},
	)

	// NotificationDeliveries counts outbound email attempts by result (sent|failed|disabled).
	NotificationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitcrew_notification_deliveries_total",
			Help: "Total number of notification delivery attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitcrew_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
