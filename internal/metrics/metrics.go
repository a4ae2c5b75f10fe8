// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SubmissionsTotal counts form-session submit attempts by outcome:
	// invalid, success, or failure.
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Form submit attempts by outcome.",
		}, []string{"outcome"})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "intake_active_sessions",
			Help: "Number of intake page sessions currently held in memory.",
		})

	SessionEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_session_evict_total",
			Help: "Cumulative number of intake page sessions dropped (idle, LRU, or reset).",
		})

	PatientsStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_patients_stored_total",
			Help: "Cumulative number of patient records appended to the store.",
		})

	PatientsRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_patients_rejected_total",
			Help: "Cumulative number of POST /patients bodies rejected as invalid.",
		})

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_store_errors_total",
			Help: "Cumulative number of store failures by operation.",
		}, []string{"op"})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ActiveSessions,
		SessionEvictTotal,
		PatientsStoredTotal,
		PatientsRejectedTotal,
		StoreErrorsTotal,
	)
}
