// Package metrics exposes prometheus instrumentation for the asset store
// client, the upload adapter, the draft cache and the sync worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

var (
	storeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Asset store API calls by operation and outcome.",
		},
		[]string{"operation", "status"},
	)
	storeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "request_duration_seconds",
			Help:      "Duration of asset store API calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
	uploadsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "rejected_total",
			Help:      "Uploads rejected before reaching the store, by reason.",
		},
		[]string{"reason"},
	)
	cacheCorruptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "corrupt_slots_total",
			Help:      "Cache slots that failed to decode and were cleared.",
		},
		[]string{"slot"},
	)
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Cache sync runs by collection and outcome.",
		},
		[]string{"collection", "status"},
	)
)

// ObserveStore records the outcome of a store call started at start
func ObserveStore(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	storeRequestsTotal.WithLabelValues(operation, status).Inc()
	storeRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// UploadRejected counts an upload refused by validation
func UploadRejected(reason string) {
	uploadsRejectedTotal.WithLabelValues(reason).Inc()
}

// CacheCorrupt counts a cleared cache slot
func CacheCorrupt(slot string) {
	cacheCorruptTotal.WithLabelValues(slot).Inc()
}

// SyncRun counts one sync attempt for a collection
func SyncRun(collection string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	syncRunsTotal.WithLabelValues(collection, status).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
