package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	verdicts   *prometheus.CounterVec
	executions *prometheus.CounterVec
	errorsTot  *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	queueDepth *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		verdicts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_verdicts_total",
				Help: "Validation verdicts by status and failing check",
			},
			[]string{"status", "check"},
		),
		executions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_executions_total",
				Help: "Order executions by symbol and result",
			},
			[]string{"symbol", "result"},
		),
		errorsTot: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradegate_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradegate_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		queueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradegate_queue_depth",
				Help: "Current depth of pipeline queues",
			},
			[]string{"queue"},
		),
	}
}

// RecordVerdict records a validation verdict. check is the failing check
// name, or "none" for accepted signals.
func (r *Recorder) RecordVerdict(status, check string) {
	if check == "" {
		check = "none"
	}
	r.verdicts.WithLabelValues(status, check).Inc()
}

// RecordExecution records an order execution result.
func (r *Recorder) RecordExecution(symbol string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	r.executions.WithLabelValues(symbol, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTot.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordQueueDepth records the current depth of a pipeline queue.
func (r *Recorder) RecordQueueDepth(queue string, depth int) {
	r.queueDepth.WithLabelValues(queue).Set(float64(depth))
}
