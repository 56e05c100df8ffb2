// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "activity_signup"

var (
	RosterOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roster_operations_total",
			Help:      "Total number of roster operations by outcome",
		},
		[]string{"operation", "result"},
	)

	RosterOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "roster_operation_duration_seconds",
			Help:      "Duration of roster operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"operation"},
	)

	ActivityParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "activity_participants",
			Help:      "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	ListenerDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_deliveries_total",
			Help:      "Total number of roster event deliveries per listener",
		},
		[]string{"listener", "result"},
	)

	ListenerDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "listener_delivery_duration_seconds",
			Help:      "Duration of roster event delivery per listener",
		},
		[]string{"listener"},
	)
)

// Operation results.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
	ResultSkipped  = "skipped"
)
