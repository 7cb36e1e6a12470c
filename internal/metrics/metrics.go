// Package metrics provides Prometheus metrics for pipeline runs. Every
// Metrics instance owns its registry, so parallel tests and repeated runs in
// one process do not collide.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jayvee"

// Metrics collects counters and histograms for one application instance.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runsCompleted *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec

	blocksExecuted *prometheus.CounterVec
	blockDuration  *prometheus.HistogramVec

	rowsDropped *prometheus.CounterVec
}

// New creates a metrics collector with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Total number of finished pipeline runs",
			},
			[]string{"pipeline", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_run_duration_seconds",
				Help:      "Duration of pipeline runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline"},
		),
		blocksExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_total",
				Help:      "Total number of blocks by final state",
			},
			[]string{"blocktype", "state"},
		),
		blockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "block_duration_seconds",
				Help:      "Duration of block executions in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"blocktype"},
		),
		rowsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_dropped_total",
				Help:      "Total number of table rows dropped by transforms and interpreters",
			},
			[]string{"block"},
		),
	}

	m.registry.MustRegister(
		m.runsCompleted,
		m.runDuration,
		m.blocksExecuted,
		m.blockDuration,
		m.rowsDropped,
	)
	return m
}

// Registry returns the underlying registry, for scraping or tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRun records a finished pipeline run.
func (m *Metrics) RecordRun(pipeline, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsCompleted.WithLabelValues(pipeline, status).Inc()
	m.runDuration.WithLabelValues(pipeline).Observe(d.Seconds())
}

// RecordBlock records the final state of a block. The duration is only
// observed for blocks that actually executed.
func (m *Metrics) RecordBlock(blockType, state string, d time.Duration, executed bool) {
	if m == nil {
		return
	}
	m.blocksExecuted.WithLabelValues(blockType, state).Inc()
	if executed {
		m.blockDuration.WithLabelValues(blockType).Observe(d.Seconds())
	}
}

// RecordDroppedRows adds n dropped rows for the named block.
func (m *Metrics) RecordDroppedRows(block string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsDropped.WithLabelValues(block).Add(float64(n))
}

// WriteFile writes all metrics in the Prometheus text format to path.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
