package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for valuationRequests.
const (
	outcomeCreated     = "created"
	outcomeInvalid     = "invalid"
	outcomeComputation = "computation_error"
	outcomeStore       = "store_error"
)

var (
	valuationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_requests_total",
		Help: "Valuation requests by outcome.",
	}, []string{"outcome"})

	evaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "valuation_evaluation_seconds",
		Help:    "Time spent in the valuation engine.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	valuationValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "valuation_value_cop",
		Help:    "Average value of persisted valuations in COP.",
		Buckets: prometheus.ExponentialBuckets(1_000_000, 3, 10),
	})

	reportRenders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "valuation_report_renders_total",
		Help: "Report requests by format and cache result.",
	}, []string{"format", "cache"})
)
