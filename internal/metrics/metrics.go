package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_verifications_total",
			Help: "Completed verification requests by final reason",
		},
		[]string{"reason"},
	)

	VerificationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_verification_errors_total",
			Help: "Verification requests that failed before producing a decision",
		},
		[]string{"stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kyc_stage_duration_seconds",
			Help:    "Wall time spent per pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	SanctionsLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kyc_sanctions_lookup_failures_total",
		Help: "Sanctions screenings that degraded to an empty match list",
	})

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_cache_hits_total",
			Help: "Result reads served from the cache",
		},
		[]string{"outcome"},
	)
)
