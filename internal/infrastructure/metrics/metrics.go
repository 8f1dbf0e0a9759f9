package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wallet_analyzer"

var (
	// AnalysesTotal counts finished analyses by outcome (success, invalid_input, error)
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of wallet analyses by outcome",
		},
		[]string{"outcome"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time taken to analyze a wallet",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SignaturesScanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signatures_scanned",
			Help:      "Number of signatures inside the window per analysis",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// TransactionsTotal counts classified transactions by result (buy, sell, or skip reason)
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Total number of transactions classified by result",
		},
		[]string{"result"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Total number of retries after rate-limited upstream calls",
		},
		[]string{"operation"},
	)

	PriceFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_fallbacks_total",
			Help:      "Total number of price lookups that degraded to a fallback",
		},
		[]string{"kind"},
	)
)
