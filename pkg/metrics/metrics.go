// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// Each constructor registers its collectors on the given registerer, so a
// process can expose them through promhttp while tests use a private
// registry:
//
//	reg := prometheus.NewRegistry()
//	observability.SetEngineHooks(metrics.NewEngineHooks(reg))
//	observability.SetCacheHooks(metrics.NewCacheHooks(reg))
//	observability.SetHTTPHooks(metrics.NewHTTPHooks(reg))
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/graphscape/pkg/observability"
)

const namespace = "graphscape"

var durationBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Engine
// =============================================================================

// EngineHooks records engine runs.
type EngineHooks struct {
	inflight    prometheus.Gauge
	runs        *prometheus.CounterVec
	rebuilds    *prometheus.CounterVec
	unconverged *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	nodes       prometheus.Histogram
	faults      *prometheus.CounterVec
}

// NewEngineHooks creates engine collectors on reg.
func NewEngineHooks(reg prometheus.Registerer) *EngineHooks {
	f := promauto.With(reg)
	return &EngineHooks{
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Number of pipeline runs currently executing.",
		}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs, labelled by layout type and status.",
		}, []string{"layout", "status"}),
		rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_rebuilds_total",
			Help:      "Total number of runs that built a new layout.",
		}, []string{"layout"}),
		unconverged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "layout_unconverged_total",
			Help:      "Total number of layouts that hit the step limit.",
		}, []string{"layout"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_ms",
			Help:      "Pipeline run latency in milliseconds.",
			Buckets:   durationBuckets,
		}, []string{"layout"}),
		nodes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_visible_nodes",
			Help:      "Visible node count per successful run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_faults_total",
			Help:      "Total number of skipped input records, labelled by kind.",
		}, []string{"kind"}),
	}
}

func (h *EngineHooks) OnRunStart(context.Context, string, int) {
	h.inflight.Inc()
}

func (h *EngineHooks) OnRunComplete(_ context.Context, layoutType string, stats observability.RunStats, err error) {
	h.inflight.Dec()
	h.runs.WithLabelValues(layoutType, status(err)).Inc()
	h.duration.WithLabelValues(layoutType).Observe(ms(stats.Duration))
	if err != nil {
		return
	}
	h.nodes.Observe(float64(stats.Nodes))
	if stats.Rebuilt {
		h.rebuilds.WithLabelValues(layoutType).Inc()
		if !stats.Converged {
			h.unconverged.WithLabelValues(layoutType).Inc()
		}
	}
}

func (h *EngineHooks) OnDataFault(_ context.Context, kind string) {
	h.faults.WithLabelValues(kind).Inc()
}

// =============================================================================
// Cache
// =============================================================================

// CacheHooks records cache traffic.
type CacheHooks struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	bytes  *prometheus.CounterVec
}

// NewCacheHooks creates cache collectors on reg.
func NewCacheHooks(reg prometheus.Registerer) *CacheHooks {
	f := promauto.With(reg)
	return &CacheHooks{
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits, labelled by key type.",
		}, []string{"key_type"}),
		misses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses, labelled by key type.",
		}, []string{"key_type"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Total bytes written to the cache, labelled by key type.",
		}, []string{"key_type"}),
	}
}

func (h *CacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.hits.WithLabelValues(keyType).Inc()
}

func (h *CacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.misses.WithLabelValues(keyType).Inc()
}

func (h *CacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.bytes.WithLabelValues(keyType).Add(float64(size))
}

// =============================================================================
// HTTP
// =============================================================================

// HTTPHooks records served API requests.
type HTTPHooks struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPHooks creates HTTP collectors on reg.
func NewHTTPHooks(reg prometheus.Registerer) *HTTPHooks {
	f := promauto.With(reg)
	return &HTTPHooks{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of API requests, labelled by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "API request latency in milliseconds.",
			Buckets:   durationBuckets,
		}, []string{"method", "route"}),
	}
}

func (h *HTTPHooks) OnRequest(_ context.Context, method, route string, statusCode int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	h.duration.WithLabelValues(method, route).Observe(ms(d))
}

// Register installs Prometheus hooks for every category on reg and returns
// a function restoring the no-op defaults.
func Register(reg prometheus.Registerer) (reset func()) {
	observability.SetEngineHooks(NewEngineHooks(reg))
	observability.SetCacheHooks(NewCacheHooks(reg))
	observability.SetHTTPHooks(NewHTTPHooks(reg))
	return observability.Reset
}
