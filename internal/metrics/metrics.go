package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogicum_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blogicum_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ContentOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogicum_content_operations_total",
			Help: "Total number of post and comment mutations",
		},
		[]string{"entity", "operation", "success"},
	)

	AuthorizationDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogicum_authorization_denials_total",
			Help: "Mutations redirected because the user does not own the object",
		},
		[]string{"entity"},
	)
)
