package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSchedulingMetricsObserve(t *testing.T) {
	m := NewSchedulingMetrics(prometheus.NewRegistry())
	m.ObserveCacheHit()
	m.ObserveCacheMiss()
	m.ObserveBooking("virtual", "booked")
	m.ObserveBooking("real", "conflict")
	m.ObserveMaterializeLatency(0.02)
}

func TestSchedulingMetricsNilSafe(t *testing.T) {
	var m *SchedulingMetrics
	m.ObserveCacheHit()
	m.ObserveCacheMiss()
	m.ObserveBooking("virtual", "error")
	m.ObserveMaterializeLatency(0.1)
}
