// Package metrics provides the centralized Prometheus metrics registry for
// the pick engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PicksResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "picks_resolved_total",
		Help:      "Total number of market results settled, by market and result",
	}, []string{"market", "result"})
	EdgesComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "edges_computed_total",
		Help:      "Total number of edge computations published",
	})
	DuplicatesCleanedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "duplicates_cleaned_total",
		Help:      "Total number of duplicate picks deleted",
	})
	BatchCommitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "batch_commits_total",
		Help:      "Total number of batch commits, by outcome",
	}, []string{"outcome"})
	BatchRollbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "batch_rollbacks_total",
		Help:      "Total number of batch rollbacks performed",
	})
	RefreshSignalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "refresh_signals_total",
		Help:      "Total number of refresh signals broadcast, by signal",
	}, []string{"signal"})
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "feed_requests_total",
		Help:      "Total number of external feed requests, by feed and status",
	}, []string{"feed", "status"})
)

// Gauge metrics
var (
	PendingOperations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "pending_operations",
		Help:      "Number of uncommitted operations in the session ledger",
	})
	PendingPicks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "pending_picks",
		Help:      "Number of picks with at least one unsettled market",
	})
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "connected_clients",
		Help:      "Number of websocket clients subscribed to refresh signals",
	})
	SimCacheHitRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "sim_cache_hit_rate",
		Help:      "Hit rate of the simulation snapshot cache",
	})
)

// Histogram metrics
var (
	ResolutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "resolution_duration_seconds",
		Help:      "Duration of full resolution runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	EdgeRefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "edge_refresh_duration_seconds",
		Help:      "Duration of edge refresh runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PicksResolvedTotal)
		registry.MustRegister(EdgesComputedTotal)
		registry.MustRegister(DuplicatesCleanedTotal)
		registry.MustRegister(BatchCommitsTotal)
		registry.MustRegister(BatchRollbacksTotal)
		registry.MustRegister(RefreshSignalsTotal)
		registry.MustRegister(FeedRequestsTotal)

		registry.MustRegister(PendingOperations)
		registry.MustRegister(PendingPicks)
		registry.MustRegister(ConnectedClients)
		registry.MustRegister(SimCacheHitRate)

		registry.MustRegister(ResolutionDuration)
		registry.MustRegister(EdgeRefreshDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordResolved records a settled market result.
func RecordResolved(market, result string) {
	PicksResolvedTotal.WithLabelValues(market, result).Inc()
}

// RecordBatchCommit records a batch commit outcome.
func RecordBatchCommit(outcome string) {
	BatchCommitsTotal.WithLabelValues(outcome).Inc()
}
