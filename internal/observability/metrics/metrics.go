package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the availability and
// booking flows.
type SchedulingMetrics struct {
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	bookingsTotal       *prometheus.CounterVec
	availabilityLatency prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "schedule",
			Subsystem: "availability",
			Name:      "cache_hits_total",
			Help:      "Availability reads served from the slot cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "schedule",
			Subsystem: "availability",
			Name:      "cache_misses_total",
			Help:      "Availability reads that required materialization",
		}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schedule",
			Subsystem: "bookings",
			Name:      "total",
			Help:      "Booking attempts by slot path and outcome",
		}, []string{"path", "outcome"}),
		availabilityLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "schedule",
			Subsystem: "availability",
			Name:      "materialize_seconds",
			Help:      "Latency of computing a day's available slots on cache miss",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.cacheHits, m.cacheMisses, m.bookingsTotal, m.availabilityLatency)
	return m
}

func (m *SchedulingMetrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *SchedulingMetrics) ObserveCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *SchedulingMetrics) ObserveBooking(path, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(path, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveMaterializeLatency(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.Observe(seconds)
}
