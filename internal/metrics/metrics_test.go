package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m := New()

	m.RecordRun("Cars", "completed", time.Second)
	m.RecordBlock("HttpExtractor", "completed", 10*time.Millisecond, true)
	m.RecordBlock("HttpExtractor", "skipped", 0, false)
	m.RecordDroppedRows("Transform", 3)
	m.RecordDroppedRows("Transform", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsCompleted.WithLabelValues("Cars", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocksExecuted.WithLabelValues("HttpExtractor", "skipped")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsDropped.WithLabelValues("Transform")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.blockDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordRun("Cars", "failed", time.Second)
		m.RecordBlock("X", "failed", time.Second, true)
		m.RecordDroppedRows("X", 1)
	})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteFile(filepath.Join(t.TempDir(), "unused.prom")))
}

func TestWriteFile(t *testing.T) {
	// --- Arrange ---
	m := New()
	m.RecordRun("Cars", "completed", 2*time.Second)
	path := filepath.Join(t.TempDir(), "run.prom")

	// --- Act ---
	err := m.WriteFile(path)

	// --- Assert ---
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `jayvee_pipeline_runs_total{pipeline="Cars",status="completed"} 1`)
}
