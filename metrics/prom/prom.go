// Package prom exports texture cache metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/texcache/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe,
// so one Adapter may serve several caches (e.g., one per view).
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evicts     *prometheus.CounterVec
	relights   prometheus.Counter
	relitCells prometheus.Counter
	sizeEnt    prometheus.Gauge
	sizeBytes  prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:   counter("hits_total", "Lit buffers found resident"),
		misses: counter("misses_total", "Lit buffers allocated on use"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Lit buffers released, by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		relights:   counter("relights_total", "Relight kernel runs"),
		relitCells: counter("relit_cells_total", "Lightmap cells relit"),
		sizeEnt:    gauge("size_entries", "Number of resident lit buffers"),
		sizeBytes:  gauge("size_bytes", "Pool bytes held by resident lit buffers"),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.relights, a.relitCells, a.sizeEnt, a.sizeBytes)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Relight counts one kernel run over cells lightmap cells.
func (a *Adapter) Relight(cells int) {
	a.relights.Inc()
	a.relitCells.Add(float64(cells))
}

// Size updates gauges for the number of entries and pool bytes in use.
func (a *Adapter) Size(entries int, bytes int64) {
	a.sizeEnt.Set(float64(entries))
	a.sizeBytes.Set(float64(bytes))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
