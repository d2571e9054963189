// Package metrics provides the centralized Prometheus metrics registry for the
// bet slip service.
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
	SelectionsAddedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "selections_added_total",
		Help:      "Total number of selections toggled onto a slip",
	})
	SelectionsRemovedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "selections_removed_total",
		Help:      "Total number of selections toggled or removed from a slip",
	})
	SlipsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "slips_submitted_total",
		Help:      "Total number of slips accepted by the wagering endpoint",
	})
	SlipsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "slips_rejected_total",
		Help:      "Total number of slip submissions rejected, by reason",
	}, []string{"reason"})
	LiveUpdatesAppliedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "live_updates_applied_total",
		Help:      "Total number of live updates merged into the match book",
	})
	LiveUpdatesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "live_updates_dropped_total",
		Help:      "Total number of live updates dropped for unknown matches",
	})
	FeedRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "feed_refreshes_total",
		Help:      "Total number of match list refreshes from the feed",
	})
	StreamReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betslip",
		Name:      "stream_reconnects_total",
		Help:      "Total number of live stream reconnect attempts",
	})
)

// Gauge metrics
var (
	MatchesInBook = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betslip",
		Name:      "matches_in_book",
		Help:      "Number of matches currently in the match book",
	})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betslip",
		Name:      "active_sessions",
		Help:      "Number of active slip sessions",
	})
	StreamConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betslip",
		Name:      "stream_connected",
		Help:      "Whether the live update stream is connected (1) or not (0)",
	})
)

// Histogram metrics
var (
	SubmissionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "betslip",
		Name:      "submission_latency_seconds",
		Help:      "Latency of slip submissions to the wagering endpoint in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	FeedFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "betslip",
		Name:      "feed_fetch_duration_seconds",
		Help:      "Duration of match list fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(SelectionsAddedTotal)
		registry.MustRegister(SelectionsRemovedTotal)
		registry.MustRegister(SlipsSubmittedTotal)
		registry.MustRegister(SlipsRejectedTotal)
		registry.MustRegister(LiveUpdatesAppliedTotal)
		registry.MustRegister(LiveUpdatesDroppedTotal)
		registry.MustRegister(FeedRefreshesTotal)
		registry.MustRegister(StreamReconnectsTotal)

		// Register gauge metrics
		registry.MustRegister(MatchesInBook)
		registry.MustRegister(ActiveSessions)
		registry.MustRegister(StreamConnected)

		// Register histogram metrics
		registry.MustRegister(SubmissionLatency)
		registry.MustRegister(FeedFetchDuration)
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

// RecordToggle records a selection toggle by direction.
func RecordToggle(added bool) {
	if added {
		SelectionsAddedTotal.Inc()
	} else {
		SelectionsRemovedTotal.Inc()
	}
}

// RecordSubmission records an accepted slip submission.
func RecordSubmission(latencySeconds float64) {
	SlipsSubmittedTotal.Inc()
	SubmissionLatency.Observe(latencySeconds)
}

// RecordRejection records a rejected slip submission.
func RecordRejection(reason string) {
	SlipsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordLiveUpdate records a live update merge attempt.
func RecordLiveUpdate(applied bool) {
	if applied {
		LiveUpdatesAppliedTotal.Inc()
	} else {
		LiveUpdatesDroppedTotal.Inc()
	}
}
