package metrics

import (
	"time"

	"crpt-hq/ismp/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SpoolMetrics tracks the spool directory processor.
//
// Metrics:
//   - ismp_spool_files_total: Envelope files by result
//   - ismp_spool_run_duration_seconds: Duration of processing runs
type SpoolMetrics struct {
	files *prometheus.CounterVec
	runs  prometheus.Histogram
}

// NewSpoolMetrics creates and registers spool metrics with the provided registry.
func NewSpoolMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SpoolMetrics {
	sm := &SpoolMetrics{
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "spool",
				Name:      "files_total",
				Help:      "Total number of spool files processed by result",
			},
			[]string{"result"},
		),

		runs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "spool",
			Name:      "run_duration_seconds",
			Help:      "Duration of spool processing runs in seconds",
			Buckets:   cfg.DurationBuckets,
		}),
	}

	registry.MustRegister(sm.files, sm.runs)
	return sm
}

// RecordFile counts one processed file.
func (sm *SpoolMetrics) RecordFile(result string) {
	sm.files.WithLabelValues(result).Inc()
}

// RecordRun observes the duration of one run.
func (sm *SpoolMetrics) RecordRun(duration time.Duration) {
	sm.runs.Observe(duration.Seconds())
}
