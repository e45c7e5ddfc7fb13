package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shetkari_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shetkari_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	MessagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shetkari_messages_stored_total",
			Help: "Total chat messages stored",
		},
		[]string{"type"}, // "user" or "bot"
	)

	ResponderFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shetkari_responder_failures_total",
			Help: "Answers replaced by the fallback reply",
		},
	)

	ResponderLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shetkari_responder_latency_seconds",
			Help:    "Time spent producing an advisory answer",
			Buckets: []float64{.01, .1, .5, 1, 2, 5, 10, 30},
		},
	)
)
