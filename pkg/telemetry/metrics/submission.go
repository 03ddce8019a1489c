package metrics

import (
	"time"

	"crpt-hq/ismp/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SubmissionMetrics tracks document submissions.
//
// Metrics:
//   - ismp_submissions_total: Submissions by status
//   - ismp_submission_duration_seconds: End-to-end Submit duration
//   - ismp_submission_payload_bytes: Size of the JSON body sent
type SubmissionMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	payload  prometheus.Histogram
}

// NewSubmissionMetrics creates and registers submission metrics with the provided registry.
func NewSubmissionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SubmissionMetrics {
	sm := &SubmissionMetrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "submissions_total",
				Help:      "Total number of document submissions by status",
			},
			[]string{"status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "submission_duration_seconds",
				Help:      "Duration of document submissions in seconds, including rate limit wait",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"status"},
		),

		payload: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "submission_payload_bytes",
			Help:      "Size of submitted document payloads in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 12), // 256B to 512KB
		}),
	}

	registry.MustRegister(sm.total, sm.duration, sm.payload)
	return sm
}

// Record records one submission.
func (sm *SubmissionMetrics) Record(status string, duration time.Duration, payloadBytes int) {
	sm.total.WithLabelValues(status).Inc()
	sm.duration.WithLabelValues(status).Observe(duration.Seconds())
	if payloadBytes > 0 {
		sm.payload.Observe(float64(payloadBytes))
	}
}
