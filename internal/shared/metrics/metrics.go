// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	PurchasesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "procurement_purchases_created_total",
			Help: "Purchases created through the record store",
		},
	)

	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_status_transitions_total",
			Help: "Purchase status changes by target status",
		},
		[]string{"status"},
	)

	NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "procurement_notification_failures_total",
			Help: "Notifications that could not be stored",
		},
	)

	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procurement_import_rows_total",
			Help: "CSV import rows by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			PurchasesCreated,
			StatusTransitions,
			NotificationFailures,
			ImportRows,
		)
	})
}
