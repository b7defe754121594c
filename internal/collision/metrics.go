package collision

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics Prometheus-метрики подсистемы столкновений
type Metrics struct {
	rebuilds        prometheus.Counter
	rebuildSeconds  prometheus.Histogram
	indexedHostiles prometheus.Gauge
	queries         prometheus.Counter
	hits            prometheus.Counter
	staleHits       prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// nil reg означает глобальный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bullethell",
			Subsystem: "collision",
			Name:      "rebuilds_total",
			Help:      "Число перестроений пространственного индекса.",
		}),
		rebuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bullethell",
			Subsystem: "collision",
			Name:      "rebuild_duration_seconds",
			Help:      "Длительность снимка и построения индекса.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.025, 0.05, 0.1},
		}),
		indexedHostiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bullethell",
			Subsystem: "collision",
			Name:      "indexed_hostiles",
			Help:      "Число врагов в текущем индексе.",
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bullethell",
			Subsystem: "collision",
			Name:      "queries_total",
			Help:      "Число снарядов, прошедших через проход запросов, включая кадры с пустым индексом.",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bullethell",
			Subsystem: "collision",
			Name:      "hits_total",
			Help:      "Попадания, применённые к живым врагам.",
		}),
		staleHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bullethell",
			Subsystem: "collision",
			Name:      "stale_hits_total",
			Help:      "Попадания по устаревшим handle, отброшенные без ошибки.",
		}),
	}

	reg.MustRegister(m.rebuilds, m.rebuildSeconds, m.indexedHostiles, m.queries, m.hits, m.staleHits)
	return m
}

func (m *Metrics) observeRebuild(size int, took time.Duration) {
	if m == nil {
		return
	}
	m.rebuilds.Inc()
	m.rebuildSeconds.Observe(took.Seconds())
	m.indexedHostiles.Set(float64(size))
}

func (m *Metrics) observeResolve(st ResolveStats) {
	if m == nil {
		return
	}
	m.queries.Add(float64(st.Projectiles))
	m.hits.Add(float64(st.Hits))
	m.staleHits.Add(float64(st.Stale))
}
