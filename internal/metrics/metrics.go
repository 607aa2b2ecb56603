// Package metrics exports soundchunk events as Prometheus metrics.
//
// A [Collector] implements the observability hook interfaces. main registers
// it once and serves [Collector.Handler] on /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/soundchunk/pkg/observability"
)

const namespace = "soundchunk"

// Collector records editor, cache and server events on its own registry.
type Collector struct {
	registry *prometheus.Registry

	layoutTotal     *prometheus.CounterVec
	layoutDuration  *prometheus.HistogramVec
	layoutNodes     prometheus.Histogram
	connectTotal    *prometheus.CounterVec
	removedTotal    prometheus.Counter
	audioTotal      *prometheus.CounterVec
	missingDepTotal *prometheus.CounterVec

	cacheTotal *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sessions        prometheus.Gauge
}

// NewCollector creates a collector with a fresh registry. Go runtime and
// process collectors are included when withRuntime is set.
func NewCollector(withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		layoutTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "layout_total", Help: "Layout runs by direction and status"},
			[]string{"direction", "status"},
		),
		layoutDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Layout duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"direction"},
		),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_nodes",
			Help:      "Nodes handed to the solver per layout",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		connectTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "connect_total", Help: "Connect gestures by outcome"},
			[]string{"outcome"},
		),
		removedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Namespace: namespace, Name: "removed_elements_total", Help: "Elements removed by gestures"},
		),
		audioTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "audio_transitions_total", Help: "Audio context transitions"},
			[]string{"from", "to", "status"},
		),
		missingDepTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "missing_dependency_total", Help: "Defaults substituted for absent dependencies"},
			[]string{"dependency"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "cache_requests_total", Help: "Cache lookups and writes"},
			[]string{"type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "cache_written_bytes_total", Help: "Bytes written to the cache"},
			[]string{"type"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status"},
			[]string{"method", "route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: namespace, Name: "sessions", Help: "Live editor sessions"},
		),
	}

	c.registry.MustRegister(
		c.layoutTotal, c.layoutDuration, c.layoutNodes,
		c.connectTotal, c.removedTotal, c.audioTotal, c.missingDepTotal,
		c.cacheTotal, c.cacheBytes,
		c.requestsTotal, c.requestDuration, c.sessions,
	)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Register installs c as the global editor, cache and server hooks.
func (c *Collector) Register() {
	observability.SetEditorHooks(c)
	observability.SetCacheHooks(c)
	observability.SetServerHooks(c)
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Editor hooks

func (c *Collector) OnLayoutStart(_ context.Context, _ string, nodeCount int) {
	c.layoutNodes.Observe(float64(nodeCount))
}

func (c *Collector) OnLayoutComplete(_ context.Context, direction string, d time.Duration, err error) {
	c.layoutTotal.WithLabelValues(direction, status(err)).Inc()
	c.layoutDuration.WithLabelValues(direction).Observe(d.Seconds())
}

func (c *Collector) OnConnect(_ context.Context, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	c.connectTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) OnRemove(_ context.Context, n int) {
	c.removedTotal.Add(float64(n))
}

func (c *Collector) OnAudioTransition(_ context.Context, from, to string, err error) {
	c.audioTotal.WithLabelValues(from, to, status(err)).Inc()
}

func (c *Collector) OnMissingDependency(_ context.Context, name string) {
	c.missingDepTotal.WithLabelValues(name).Inc()
}

// Cache hooks

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, size int) {
	c.cacheTotal.WithLabelValues(keyType, "set").Inc()
	c.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// Server hooks

func (c *Collector) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) OnSessionCount(_ context.Context, n int) {
	c.sessions.Set(float64(n))
}

var (
	_ observability.EditorHooks = (*Collector)(nil)
	_ observability.CacheHooks  = (*Collector)(nil)
	_ observability.ServerHooks = (*Collector)(nil)
)
