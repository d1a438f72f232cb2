// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the courier backend.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courier_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// LoginsTotal counts login attempts by outcome (success, failure).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_logins_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// TokenValidationsTotal counts per-request token resolution outcomes
	// (valid, invalid, missing).
	TokenValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_token_validations_total",
			Help: "Token validation outcomes",
		},
		[]string{"outcome"},
	)

	// UnauthorizedTotal counts requests rejected with 401 at the boundary.
	UnauthorizedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_unauthorized_total",
			Help: "Rejected requests",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginsTotal,
		TokenValidationsTotal,
		UnauthorizedTotal,
	)
}
