package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/heybeacon/beacon/internal/domain"
	"github.com/heybeacon/beacon/internal/probe"
)

var durationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

type metrics struct {
	checksTotal      *prometheus.CounterVec
	checkDuration    *prometheus.HistogramVec
	transitionsTotal *prometheus.CounterVec
	tickDuration     prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "scheduler",
			Name:      "checks_total",
			Help:      "Count of completed checks by monitor type and outcome",
		}, []string{"type", "status"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "beacon",
			Subsystem: "scheduler",
			Name:      "check_duration_seconds",
			Help:      "Latency distribution of checks by monitor type",
			Buckets:   durationBuckets,
		}, []string{"type"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beacon",
			Subsystem: "scheduler",
			Name:      "transitions_total",
			Help:      "Count of monitor status transitions by direction",
		}, []string{"direction"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "beacon",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of full reconciliation ticks",
			Buckets:   durationBuckets,
		}),
	}

	collectors := []prometheus.Collector{m.checksTotal, m.checkDuration, m.transitionsTotal, m.tickDuration}
	for i, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := already.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					if i == 0 {
						m.checksTotal = existing
					} else {
						m.transitionsTotal = existing
					}
				case *prometheus.HistogramVec:
					m.checkDuration = existing
				case prometheus.Histogram:
					m.tickDuration = existing
				}
			}
		}
	}
	return m
}

func (m *metrics) observeCheck(kind domain.MonitorType, result probe.Result) {
	if m == nil {
		return
	}
	status := "down"
	if result.Status {
		status = "up"
	}
	m.checksTotal.With(prometheus.Labels{"type": string(kind), "status": status}).Inc()
	m.checkDuration.With(prometheus.Labels{"type": string(kind)}).Observe(float64(result.ResponseTimeMS) / 1000)
}

func (m *metrics) observeTransition(toUp bool) {
	if m == nil {
		return
	}
	direction := "down"
	if toUp {
		direction = "up"
	}
	m.transitionsTotal.With(prometheus.Labels{"direction": direction}).Inc()
}

func (m *metrics) observeTick(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(elapsed.Seconds())
}
