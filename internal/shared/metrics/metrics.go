// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exposed metric names.
const (
	MetricRenderTotal        = "cv_render_total"
	MetricRenderFailedTotal  = "cv_render_failed_total"
	MetricRenderPagesTotal   = "cv_render_pages_total"
	MetricVersionsSavedTotal = "cv_versions_saved_total"
	MetricRenderDurationMs   = "cv_render_duration_ms"
)

// renderBuckets are upper bounds in milliseconds.
var renderBuckets = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

type collectors struct {
	registry       *prometheus.Registry
	renderTotal    prometheus.Counter
	renderFailed   prometheus.Counter
	renderPages    prometheus.Counter
	versionsSaved  prometheus.Counter
	renderDuration prometheus.Histogram
}

var (
	mu  sync.RWMutex
	cur = newCollectors()
)

// newCollectors builds a private registry so the process-wide default one
// (and its Go runtime collectors) stays out of the exposition.
func newCollectors() *collectors {
	c := &collectors{
		registry: prometheus.NewRegistry(),
		renderTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRenderTotal,
			Help: "Total render attempts.",
		}),
		renderFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRenderFailedTotal,
			Help: "Total failed renders.",
		}),
		renderPages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricRenderPagesTotal,
			Help: "Total pages rendered.",
		}),
		versionsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVersionsSavedTotal,
			Help: "Total versions saved.",
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRenderDurationMs,
			Help:    "Render duration in milliseconds.",
			Buckets: renderBuckets,
		}),
	}
	c.registry.MustRegister(c.renderTotal, c.renderFailed, c.renderPages, c.versionsSaved, c.renderDuration)
	return c
}

func current() *collectors {
	mu.RLock()
	defer mu.RUnlock()
	return cur
}

// IncRender increments the render attempts counter.
func IncRender() {
	current().renderTotal.Inc()
}

// IncRenderFailed increments the failed renders counter.
func IncRenderFailed() {
	current().renderFailed.Inc()
}

// IncVersionsSaved increments the saved versions counter.
func IncVersionsSaved() {
	current().versionsSaved.Inc()
}

// AddRenderedPages adds n to the rendered pages counter.
func AddRenderedPages(n int) {
	if n > 0 {
		current().renderPages.Add(float64(n))
	}
}

// ObserveRenderDurationMs records a render duration in milliseconds.
func ObserveRenderDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	current().renderDuration.Observe(value)
}

// Registry returns the registry the collectors above are registered with.
func Registry() *prometheus.Registry {
	return current().registry
}

// Handler exposes the registry in the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// SinceMillis returns the milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// reset swaps in fresh collectors.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	cur = newCollectors()
}
