package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agbru/hedgesweep/internal/orchestration"
	"github.com/agbru/hedgesweep/internal/sweep"
)

const namespace = "hedgesweep"

// SweepMetrics records task lifecycle events on a private registry.
// It implements orchestration.Observer and is safe for concurrent use.
type SweepMetrics struct {
	registry  *prometheus.Registry
	submitted prometheus.Counter
	completed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  prometheus.Gauge
}

// NewSweepMetrics registers the sweep metrics, a heap gauge and the standard
// Go and process collectors on a new registry.
func NewSweepMetrics() *SweepMetrics {
	m := &SweepMetrics{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Hedging tasks submitted to the worker pool.",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Hedging tasks that reached a terminal state.",
		}, []string{"strategy", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Time spent evaluating one hedging task.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"strategy"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Hedging tasks currently running.",
		}),
	}

	memory := NewMemoryCollector()
	heap := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "heap_bytes",
		Help:      "Bytes of allocated heap objects.",
	}, func() float64 { return float64(memory.HeapInUse()) })

	m.registry.MustRegister(
		m.submitted, m.completed, m.duration, m.inFlight, heap,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the sweep metrics.
func (m *SweepMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// TaskSubmitted implements orchestration.Observer.
func (m *SweepMetrics) TaskSubmitted(sweep.Task) {
	m.submitted.Inc()
}

// TaskStarted implements orchestration.Observer.
func (m *SweepMetrics) TaskStarted(sweep.Task) {
	m.inFlight.Inc()
}

// TaskFinished implements orchestration.Observer.
func (m *SweepMetrics) TaskFinished(result orchestration.TaskResult) {
	strategy := result.Task.Strategy.String()
	m.inFlight.Dec()
	m.completed.WithLabelValues(strategy, result.State().String()).Inc()
	m.duration.WithLabelValues(strategy).Observe(result.Duration.Seconds())
}
