// Package telemetry groups the observability of the ISMP client.
//
// # Components
//
//   - logging: structured slog logging with signature and token redaction
//   - metrics: Prometheus metrics for the limiter, submissions and the spool
//   - tracing: OpenTelemetry spans around validation, waits and POSTs
//   - health: liveness, readiness and version endpoints
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(path)
//	if err != nil {
//		return err
//	}
//
//	logger, err := logging.New(logging.Config{
//		Level:  cfg.Telemetry.Logging.Level,
//		Format: cfg.Telemetry.Logging.Format,
//	})
//	if err != nil {
//		return err
//	}
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.WatchLimiter(limiter)
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//		return err
//	}
//	defer tracer.Shutdown(ctx)
//
// Signatures never reach the logs: attributes named signature, token or
// authorization are masked by the logging package.
package telemetry
