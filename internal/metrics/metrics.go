package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherdesk_api_calls_total",
			Help: "Total OpenWeatherMap API calls",
		},
		[]string{"endpoint", "status"},
	)

	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherdesk_api_latency_seconds",
			Help:    "OpenWeatherMap API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	FallbackAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherdesk_fallback_attempts_total",
			Help: "Requests retried against the free-tier endpoint after an auth failure",
		},
	)

	HistoryDaysSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherdesk_history_days_skipped_total",
			Help: "Days skipped in historical range fetches due to per-day failures",
		},
	)
)
