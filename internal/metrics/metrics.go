package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed by the service
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	PaymentsApplied     prometheus.Counter
	SchedulesGenerated  prometheus.Counter
}

// New registers and returns the service metrics
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_servicing_http_requests_total",
			Help: "Total HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loan_servicing_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		PaymentsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loan_servicing_payments_applied_total",
			Help: "Payments allocated through the waterfall.",
		}),
		SchedulesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loan_servicing_schedules_generated_total",
			Help: "Repayment schedules generated or regenerated.",
		}),
	}
}
