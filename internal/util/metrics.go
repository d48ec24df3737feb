package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ObservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observations_total",
		Help: "Total number of observations resolved, by terminal state",
	}, []string{"state"})

	MatchScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "observation_match_score",
		Help:    "Similarity score of accepted observation matches",
		Buckets: []float64{50, 60, 70, 80, 90, 95, 99, 100},
	})

	ResolveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "observation_resolve_latency_seconds",
		Help:    "Latency of observation resolution",
		Buckets: prometheus.DefBuckets,
	})

	ItemsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_items_created_total",
		Help: "Total number of catalog items created",
	})

	ItemsRenamedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_items_renamed_total",
		Help: "Total number of catalog item renames",
	})

	StockAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_adjustments_total",
		Help: "Total number of stock adjustments, by direction",
	}, []string{"direction"})

	PriceChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_changes_total",
		Help: "Total number of asking price changes",
	})

	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_recorded_total",
		Help: "Total number of sales recorded",
	})

	SalesValueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_value_total",
		Help: "Cumulative value of recorded sales",
	})

	LedgerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_errors_total",
		Help: "Total number of rejected catalog/ledger operations, by reason",
	}, []string{"reason"})

	SnapshotSaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapshot_save_latency_seconds",
		Help:    "Latency of snapshot persistence",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
