package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopfloor/api/internal/model"
)

const namespace = "shopfloor"

// Recorder exports core operation timings and shop-floor counters to
// Prometheus. Each recorder owns its registry so tests and multiple
// ledgers never collide.
type Recorder struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	movements   *prometheus.CounterVec
	syncFailed  prometheus.Counter
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Core operations by name and result.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Core operation latency.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"operation"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Committed job status transitions.",
		}, []string{"from", "to"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Committed stock movements by direction and resulting status.",
		}, []string{"direction", "status"}),
		syncFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machine_sync_failures_total",
			Help:      "Transitions whose bound machine could not be synchronized.",
		}),
	}
	r.registry.MustRegister(
		r.operations,
		r.durations,
		r.transitions,
		r.movements,
		r.syncFailed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records a core operation outcome.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// JobTransitioned counts a committed status change.
func (r *Recorder) JobTransitioned(from, to model.JobStatus) {
	r.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// StockMoved counts a committed stock movement.
func (r *Recorder) StockMoved(direction model.Direction, status model.MaterialStatus) {
	r.movements.WithLabelValues(string(direction), string(status)).Inc()
}

// MachineSyncFailed counts a skipped machine synchronization.
func (r *Recorder) MachineSyncFailed() {
	r.syncFailed.Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
