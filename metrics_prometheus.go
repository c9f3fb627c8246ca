package workqueue

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics exports per-class activity as Prometheus collectors
// labelled by class:
//
//	<ns>_queued_items                  gauge
//	<ns>_executed_total                counter
//	<ns>_panicked_total                counter
//	<ns>_signal_saturated_total        counter
//	<ns>_routine_duration_seconds      histogram
//
// Per-class children are resolved once at construction so the hot path does
// no label lookups.
type PrometheusMetrics struct {
	queued    [NumClasses]prometheus.Gauge
	executed  [NumClasses]prometheus.Counter
	panicked  [NumClasses]prometheus.Counter
	saturated [NumClasses]prometheus.Counter
	duration  [NumClasses]prometheus.Observer
}

// NewPrometheusMetrics creates the collectors and registers them on reg.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) (*PrometheusMetrics, error) {
	if namespace == "" {
		namespace = "workqueue"
	}
	labels := []string{"class"}

	queued := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queued_items",
		Help:      "Work items waiting in the class queue",
	}, labels)
	executed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "executed_total",
		Help:      "Work item routines that finished",
	}, labels)
	panicked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panicked_total",
		Help:      "Work item routines that panicked",
	}, labels)
	saturated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signal_saturated_total",
		Help:      "Wake-ups dropped because the counting signal was at capacity",
	}, labels)
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "routine_duration_seconds",
		Help:      "Time spent running work item routines",
		Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, labels)

	for _, c := range []prometheus.Collector{queued, executed, panicked, saturated, duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("workqueue: register metrics: %w", err)
		}
	}

	m := &PrometheusMetrics{}
	for _, c := range Classes() {
		name := c.String()
		m.queued[c] = queued.WithLabelValues(name)
		m.executed[c] = executed.WithLabelValues(name)
		m.panicked[c] = panicked.WithLabelValues(name)
		m.saturated[c] = saturated.WithLabelValues(name)
		m.duration[c] = duration.WithLabelValues(name)
	}
	return m, nil
}

func (m *PrometheusMetrics) IncQueued(c Class) { m.queued[c].Inc() }
func (m *PrometheusMetrics) DecQueued(c Class) { m.queued[c].Dec() }

func (m *PrometheusMetrics) ObserveExecuted(c Class, d time.Duration) {
	m.executed[c].Inc()
	m.duration[c].Observe(d.Seconds())
}

func (m *PrometheusMetrics) IncPanicked(c Class)  { m.panicked[c].Inc() }
func (m *PrometheusMetrics) IncSaturated(c Class) { m.saturated[c].Inc() }
