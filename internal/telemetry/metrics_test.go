package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.PairFetched("EURUSD", true)
	m.PairFetched("EURUSD", true)
	m.PairFetched("GBPUSD", false)
	m.RunFinished("extract", "partial")
	m.BytesWritten("fx_rates", 512)
	m.PositionGenerated("LONG")
	m.RunSucceeded("positions", 1700000000)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pairsFetched.WithLabelValues("EURUSD", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pairsFetched.WithLabelValues("GBPUSD", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("extract", "partial")))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.bytesWritten.WithLabelValues("fx_rates")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.positionsGenerated.WithLabelValues("LONG")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastSuccess.WithLabelValues("positions")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PairFetched("EURUSD", true)
	m.RunFinished("extract", "succeeded")
	m.BytesWritten("fx_rates", 1)
	m.PositionGenerated("SHORT")
	m.RunSucceeded("extract", 1)
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RunFinished("positions", "succeeded")

	path := filepath.Join(t.TempDir(), "fxrisk.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fxrisk_job_runs_total{job="positions",status="succeeded"} 1`)
}
