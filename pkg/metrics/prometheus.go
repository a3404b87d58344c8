package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	observations    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec
	algorithmTime   *prometheus.HistogramVec
	adapterDegraded *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costcast_observations_total",
				Help: "Total number of cost observations routed to a backend",
			},
			[]string{"backend", "account"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costcast_forecast_runs_total",
				Help: "Completed forecast runs by granularity",
			},
			[]string{"granularity"},
		),
		algorithmTime: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "costcast_algorithm_duration_seconds",
				Help:    "Per-algorithm forecast duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
		adapterDegraded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costcast_adapter_degraded_total",
				Help: "Stat adapter calls degraded to missing values",
			},
			[]string{"algorithm", "reason"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "costcast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordObservation records an observation routed to a backend.
func (r *Recorder) RecordObservation(backend, account string) {
	r.observations.WithLabelValues(backend, account).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRun records a completed forecast run.
func (r *Recorder) RecordRun(granularity string) {
	r.runsTotal.WithLabelValues(granularity).Inc()
}

// RecordAlgorithm records one algorithm's forecast duration.
func (r *Recorder) RecordAlgorithm(algo string, seconds float64) {
	r.algorithmTime.WithLabelValues(algo).Observe(seconds)
}

// RecordAdapterDegraded records an adapter call degraded to missing.
func (r *Recorder) RecordAdapterDegraded(algo, reason string) {
	r.adapterDegraded.WithLabelValues(algo, reason).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
