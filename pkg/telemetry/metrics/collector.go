package metrics

import (
	"time"

	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/limits/ratelimit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns all Prometheus metrics of the client and exposes them on
// a private registry.
//
// It satisfies ratelimit.Observer, submitter.Recorder and spool.Recorder, so
// one instance can be handed to every component.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	limiterMetrics    *LimiterMetrics
	submissionMetrics *SubmissionMetrics
	spoolMetrics      *SpoolMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a new private registry with
// Go runtime and process collectors is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "ismp"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.WaitBuckets) == 0 {
		cfg.WaitBuckets = config.DefaultWaitBuckets
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets
	}

	return &Collector{
		config:            cfg,
		registry:          registry,
		limiterMetrics:    NewLimiterMetrics(cfg, registry),
		submissionMetrics: NewSubmissionMetrics(cfg, registry),
		spoolMetrics:      NewSpoolMetrics(cfg, registry),
	}
}

// Admitted implements ratelimit.Observer.
func (c *Collector) Admitted(wait time.Duration) {
	c.limiterMetrics.RecordAdmission(wait)
}

// Canceled implements ratelimit.Observer.
func (c *Collector) Canceled(wait time.Duration) {
	c.limiterMetrics.RecordCancellation(wait)
}

// WatchLimiter exports the limiter's remaining capacity as a gauge that is
// evaluated on every scrape. Only the first call has an effect.
func (c *Collector) WatchLimiter(l ratelimit.Limiter) {
	c.limiterMetrics.Watch(l)
}

// RecordSubmission records the outcome of one Submit call.
//
// Parameters:
//   - status: "accepted", "rejected", "failed", "canceled" or "invalid"
//   - duration: total time spent in Submit, including the limiter wait
//   - payloadBytes: size of the JSON body (0 if nothing was sent)
func (c *Collector) RecordSubmission(status string, duration time.Duration, payloadBytes int) {
	c.submissionMetrics.Record(status, duration, payloadBytes)
}

// RecordSpoolFile records the outcome of one spool file ("done", "failed",
// "skipped").
func (c *Collector) RecordSpoolFile(result string) {
	c.spoolMetrics.RecordFile(result)
}

// RecordSpoolRun records the duration of one spool run.
func (c *Collector) RecordSpoolRun(duration time.Duration) {
	c.spoolMetrics.RecordRun(duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
