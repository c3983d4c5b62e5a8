package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	rejectNotFound    = "not_found"
	rejectRateLimited = "rate_limited"
	rejectStoreError  = "store_error"
)

var (
	scansAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrhub_scans_accepted_total",
			Help: "Scans that were recorded and redirected, by device class",
		},
		[]string{"device"},
	)

	scansRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrhub_scans_rejected_total",
			Help: "Scans that did not redirect, by rejection reason",
		},
		[]string{"reason"},
	)

	uniqueScans = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrhub_scans_unique_total",
			Help: "Accepted scans counted as first for their fingerprint and day",
		},
	)

	counterUpdateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrhub_counter_update_failures_total",
			Help: "Cached counter updates that failed after a recorded scan",
		},
	)
)
