package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "voxelspace"

// Collector holds the renderer and frame cache metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	rendered      prometheus.Counter
	preloaded     prometheus.Counter
	hits          prometheus.Counter
	misses        prometheus.Counter
	invalidations prometheus.Counter
	renderSeconds prometheus.Histogram
}

// New builds the collectors and registers them on reg.
// A nil reg uses the global Prometheus registry.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		rendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames produced by the projection pipeline.",
		}),
		preloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_preloaded_total",
			Help:      "Frames rendered ahead of time by the background worker.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Frame requests answered from the predictive cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Frame requests rendered synchronously.",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Camera commits that discarded cached frames.",
		}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_seconds",
			Help:      "Wall time of one frame render.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	reg.MustRegister(c.rendered, c.preloaded, c.hits, c.misses, c.invalidations, c.renderSeconds)
	return c
}

// Rendered records one finished render and its duration.
func (c *Collector) Rendered(d time.Duration, preload bool) {
	if c == nil {
		return
	}
	c.rendered.Inc()
	if preload {
		c.preloaded.Inc()
	}
	c.renderSeconds.Observe(d.Seconds())
}

func (c *Collector) CacheHit() {
	if c != nil {
		c.hits.Inc()
	}
}

func (c *Collector) CacheMiss() {
	if c != nil {
		c.misses.Inc()
	}
}

func (c *Collector) Invalidated() {
	if c != nil {
		c.invalidations.Inc()
	}
}

// Snapshot is a point-in-time read of the counters.
type Snapshot struct {
	Rendered  int64
	Preloaded int64
	Hits      int64
	Misses    int64
}

// Snapshot reads the current counter values. A nil collector reads zero.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Rendered:  counterValue(c.rendered),
		Preloaded: counterValue(c.preloaded),
		Hits:      counterValue(c.hits),
		Misses:    counterValue(c.misses),
	}
}

func counterValue(c prometheus.Counter) int64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return int64(m.GetCounter().GetValue())
}

// Handler serves the metrics gathered by g. A nil g uses the global registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
