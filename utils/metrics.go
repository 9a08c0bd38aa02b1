// File: utils/metrics.go
package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "parkezy"

var (
	// ClaimsTotal counts slot claims by result (won, unavailable, error).
	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "slot_claims_total",
		Help:      "Slot claim attempts by result.",
	}, []string{"result"})

	// BookingTransitions counts booking status changes by target status.
	BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "booking_transitions_total",
		Help:      "Booking status transitions by target status.",
	}, []string{"status"})

	// PaymentResolutions counts reconciler outcomes by trigger and result.
	PaymentResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "payment_resolutions_total",
		Help:      "Payment reconciliation results by trigger (poll, webhook) and result.",
	}, []string{"trigger", "result"})

	// CompensationFailures counts slots left held after a failed ledger write.
	CompensationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "compensation_failures_total",
		Help:      "Slot compensations that exhausted their retries.",
	})

	// SweepDuration records how long each sweep pass takes.
	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of release sweeps.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"sweep"})

	// SweepReleased counts slots freed by sweeps.
	SweepReleased = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "sweep_released_total",
		Help:      "Slots released by release sweeps.",
	}, []string{"sweep"})
)
