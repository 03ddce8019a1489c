// Package server runs the telemetry HTTP endpoint of the ismp client.
//
// The server is optional and only exposes observability routes; documents
// are never accepted over it.
//
//   - GET <metrics path> - Prometheus metrics (default /metrics)
//   - GET /health - Liveness probe (always 200 while running)
//   - GET /ready - Readiness probe (runs registered health checks)
//   - GET /version - Build information
//
// Requests pass through trace context extraction, access logging and panic
// recovery (innermost to outermost).
//
// Basic usage:
//
//	srv := server.New(server.Config{
//	    Address:     cfg.Telemetry.Metrics.ListenAddress,
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	}, collector.Handler(), checker, logger)
//	go srv.Run(ctx) // returns after ctx is canceled and the server drained
package server
