// Package tracing provides OpenTelemetry distributed tracing for document
// submissions.
//
// # Overview
//
// Every submission produces a span tree:
//
//	ismp.submit                 doc id, doc type, request id, status
//	├── ismp.limiter.acquire    time spent waiting for capacity
//	└── ismp.registry.send      the single POST to the registry
//
// The spool processor wraps each run in an ismp.spool.process span, so all
// submissions of one run share a trace.
//
// # Trace Context Propagation
//
// Outgoing requests carry W3C Trace Context headers (see Inject):
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling Strategies
//
//   - always: Sample all traces
//   - never: Sample no traces
//   - ratio: Sample a percentage of traces
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, tracing.SpanSubmit)
//	defer span.End()
//
// When tracing is disabled, New returns a noop tracer.
package tracing
