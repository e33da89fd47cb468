package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carrental"

var (
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "booking_actions_total", Help: "Booking action submissions by outcome"},
		[]string{"action", "outcome"},
	)
	ActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_action_duration_seconds",
			Help:      "Time to validate and apply a booking action",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "settlements_computed_total", Help: "Settlement snapshots computed"})

	InvalidationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "invalidations_published_total", Help: "Invalidation signals by sink and result"},
		[]string{"sink", "result"},
	)
	WSSubscribers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "ws_subscribers", Help: "Connected invalidation subscribers"})

	GRPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "grpc_requests_total", Help: "gRPC requests by method and status code"},
		[]string{"method", "code"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "job_runs_total", Help: "Scheduled job runs by result"},
		[]string{"job", "result"},
	)
)

// Action outcomes recorded on ActionsTotal.
const (
	OutcomeApplied  = "applied"
	OutcomeReplayed = "replayed"
	OutcomeRejected = "rejected"
	OutcomeStale    = "stale"
	OutcomeInFlight = "in_flight"
	OutcomeFailed   = "failed"
)
