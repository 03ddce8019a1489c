// Package metrics provides Prometheus metrics for the ISMP client.
//
// # Overview
//
// A Collector registers every metric on a private registry and implements
// the observer interfaces of the rate limiter, the submitter and the spool
// processor:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	limiter, _ := ratelimit.New(ratelimit.Config{
//		Limit:    5,
//		Window:   time.Second,
//		Observer: collector,
//	})
//	collector.WatchLimiter(limiter)
//
//	sub, _ := submitter.New(limiter, transport, submitter.Options{Metrics: collector})
//
// # Metrics
//
//   - ismp_limiter_admissions_total
//   - ismp_limiter_cancellations_total
//   - ismp_limiter_wait_seconds
//   - ismp_limiter_remaining
//   - ismp_submissions_total{status}
//   - ismp_submission_duration_seconds{status}
//   - ismp_submission_payload_bytes
//   - ismp_spool_files_total{result}
//   - ismp_spool_run_duration_seconds
//
// Label values are fixed enumerations, so cardinality is bounded.
//
// # Exposition
//
// Handler serves the registry in the Prometheus text or OpenMetrics format;
// pkg/server mounts it next to /health.
package metrics
