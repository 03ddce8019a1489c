package metrics

import (
	"sync"
	"time"

	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/limits/ratelimit"

	"github.com/prometheus/client_golang/prometheus"
)

// LimiterMetrics tracks rate limiter behaviour.
//
// Metrics:
//   - ismp_limiter_admissions_total: Callers admitted
//   - ismp_limiter_cancellations_total: Callers that gave up waiting
//   - ismp_limiter_wait_seconds: Time spent in Acquire by admitted callers
//   - ismp_limiter_remaining: Capacity available right now (after WatchLimiter)
type LimiterMetrics struct {
	namespace string
	registry  *prometheus.Registry

	admissions    prometheus.Counter
	cancellations prometheus.Counter
	wait          prometheus.Histogram

	watchOnce sync.Once
}

// NewLimiterMetrics creates and registers limiter metrics with the provided registry.
func NewLimiterMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LimiterMetrics {
	lm := &LimiterMetrics{
		namespace: cfg.Namespace,
		registry:  registry,

		admissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "limiter",
			Name:      "admissions_total",
			Help:      "Total number of callers admitted by the rate limiter",
		}),

		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "limiter",
			Name:      "cancellations_total",
			Help:      "Total number of callers that stopped waiting for capacity",
		}),

		wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "limiter",
			Name:      "wait_seconds",
			Help:      "Time admitted callers spent waiting for capacity",
			Buckets:   cfg.WaitBuckets,
		}),
	}

	registry.MustRegister(lm.admissions, lm.cancellations, lm.wait)
	return lm
}

// RecordAdmission counts an admission and its wait time.
func (lm *LimiterMetrics) RecordAdmission(wait time.Duration) {
	lm.admissions.Inc()
	lm.wait.Observe(wait.Seconds())
}

// RecordCancellation counts a caller that gave up.
func (lm *LimiterMetrics) RecordCancellation(time.Duration) {
	lm.cancellations.Inc()
}

// Watch registers a gauge reading l.Stats().Remaining on every scrape.
func (lm *LimiterMetrics) Watch(l ratelimit.Limiter) {
	lm.watchOnce.Do(func() {
		lm.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: lm.namespace,
				Subsystem: "limiter",
				Name:      "remaining",
				Help:      "Number of callers that can be admitted without waiting",
			},
			func() float64 { return float64(l.Stats().Remaining) },
		))
	})
}
