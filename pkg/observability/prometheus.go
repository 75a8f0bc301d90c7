package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "converge"

// PrometheusHooks implements CheckHooks, CacheHooks and HTTPHooks with
// Prometheus collectors registered on a private registry.
//
// A CLI run is short-lived, so metrics are exported with [WriteTextfile]
// for the node_exporter textfile collector rather than served over HTTP.
type PrometheusHooks struct {
	registry *prometheus.Registry

	checks          prometheus.Counter
	checkNodes      prometheus.Gauge
	checkConflicts  prometheus.Gauge
	checkDuration   prometheus.Histogram
	resolves        *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	cacheEvents     *prometheus.CounterVec
	cacheBytes      prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpErrors      *prometheus.CounterVec
}

// NewPrometheusHooks creates hooks backed by a fresh registry.
func NewPrometheusHooks() *PrometheusHooks {
	h := &PrometheusHooks{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "checks_total",
			Help: "Convergence checks run.",
		}),
		checkNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "check_nodes",
			Help: "Nodes walked by the last convergence check.",
		}),
		checkConflicts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "check_conflicts",
			Help: "Conflicting artifacts found by the last convergence check.",
		}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "check_duration_seconds",
			Help:    "Duration of convergence checks.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "resolves_total",
			Help: "Dependency tree resolutions by outcome.",
		}, []string{"outcome"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "resolve_duration_seconds",
			Help:    "Duration of dependency tree resolutions.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_events_total",
			Help: "Cache lookups and writes by key type and event.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Repository HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "Repository HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_errors_total",
			Help: "Repository HTTP transport errors by host.",
		}, []string{"host"}),
	}
	h.registry.MustRegister(
		h.checks, h.checkNodes, h.checkConflicts, h.checkDuration,
		h.resolves, h.resolveDuration,
		h.cacheEvents, h.cacheBytes,
		h.httpRequests, h.httpDuration, h.httpErrors,
	)
	return h
}

// Registry returns the underlying registry.
func (h *PrometheusHooks) Registry() *prometheus.Registry { return h.registry }

// WriteTextfile writes all metrics to path in the Prometheus text format.
// The file is written atomically.
func (h *PrometheusHooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func (h *PrometheusHooks) OnResolveStart(context.Context, string) {}

func (h *PrometheusHooks) OnResolveComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	h.resolves.WithLabelValues(outcome).Inc()
	h.resolveDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCheckStart(context.Context, string) {}

func (h *PrometheusHooks) OnCheckComplete(_ context.Context, _ string, nodes, conflicts int, d time.Duration) {
	h.checks.Inc()
	h.checkNodes.Set(float64(nodes))
	h.checkConflicts.Set(float64(conflicts))
	h.checkDuration.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.httpErrors.WithLabelValues(host).Inc()
}

var (
	_ CheckHooks = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks  = (*PrometheusHooks)(nil)
)
