// Package telemetry holds the Prometheus counters the ingestion jobs update.
// Jobs are short lived, so metrics are exported by writing the registry to a
// node_exporter textfile rather than serving /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fxrisk"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	runs               *prometheus.CounterVec
	pairsFetched       *prometheus.CounterVec
	bytesWritten       *prometheus.CounterVec
	positionsGenerated *prometheus.CounterVec
	lastSuccess        *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Job runs by job name and final status.",
		}, []string{"job", "status"}),
		pairsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fx_pairs_fetched_total",
			Help:      "Currency pair downloads by outcome.",
		}, []string{"symbol", "result"}),
		bytesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_bytes_written_total",
			Help:      "Bytes written to raw storage by dataset.",
		}, []string{"dataset"}),
		positionsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_generated_total",
			Help:      "Simulated positions by direction.",
		}, []string{"direction"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last fully successful run.",
		}, []string{"job"}),
	}

	m.registry.MustRegister(m.runs, m.pairsFetched, m.bytesWritten, m.positionsGenerated, m.lastSuccess)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RunFinished(job, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(job, status).Inc()
}

func (m *Metrics) RunSucceeded(job string, unixSeconds float64) {
	if m == nil {
		return
	}
	m.lastSuccess.WithLabelValues(job).Set(unixSeconds)
}

func (m *Metrics) PairFetched(symbol string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.pairsFetched.WithLabelValues(symbol, result).Inc()
}

func (m *Metrics) BytesWritten(dataset string, n int) {
	if m == nil {
		return
	}
	m.bytesWritten.WithLabelValues(dataset).Add(float64(n))
}

func (m *Metrics) PositionGenerated(direction string) {
	if m == nil {
		return
	}
	m.positionsGenerated.WithLabelValues(direction).Inc()
}

// WriteTextfile writes every metric in the textfile collector format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
