package submitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/limits/ratelimit"
	"crpt-hq/ismp/pkg/telemetry/logging"
	"crpt-hq/ismp/pkg/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Submission statuses reported to the Recorder.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
	StatusInvalid  = "invalid"
)

// Recorder receives one call per Submit. *metrics.Collector implements it.
type Recorder interface {
	RecordSubmission(status string, duration time.Duration, payloadBytes int)
}

// Options contains the optional collaborators of a Submitter.
type Options struct {
	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// Metrics is optional
	Metrics Recorder

	// Tracer defaults to a noop tracer
	Tracer trace.Tracer

	// RequestID generates X-Request-ID values. Defaults to random UUIDs.
	RequestID func() string
}

// Result describes an accepted submission.
type Result struct {
	// RequestID is the X-Request-ID sent with the document
	RequestID string

	// DocID is the submitted document's identifier
	DocID string

	// StatusCode is the registry's HTTP status code
	StatusCode int

	// Waited is the time spent waiting for rate limit capacity
	Waited time.Duration

	// Duration is the total time spent in Submit
	Duration time.Duration
}

// Submitter sends documents to the registry through a shared rate limiter.
// It is safe for concurrent use; all callers share the limiter's budget.
type Submitter struct {
	limiter   ratelimit.Acquirer
	transport Transport
	logger    *slog.Logger
	metrics   Recorder
	tracer    trace.Tracer
	requestID func() string
}

// New creates a Submitter. limiter and transport are required.
func New(limiter ratelimit.Acquirer, transport Transport, opts Options) (*Submitter, error) {
	if limiter == nil {
		return nil, &ConfigError{Field: "limiter", Message: "is required"}
	}
	if transport == nil {
		return nil, &ConfigError{Field: "transport", Message: "is required"}
	}

	s := &Submitter{
		limiter:   limiter,
		transport: transport,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		tracer:    opts.Tracer,
		requestID: opts.RequestID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer(tracing.InstrumentationName)
	}
	if s.requestID == nil {
		s.requestID = uuid.NewString
	}
	return s, nil
}

// Submit validates doc, waits for rate limit capacity, serializes doc and
// POSTs it exactly once.
//
// Errors:
//   - *documents.ValidationError: doc is invalid; no capacity was used
//   - ratelimit.ErrWaitCanceled: ctx ended while waiting; nothing was sent
//   - *APIError, *TimeoutError, *TransportError: the POST failed
func (s *Submitter) Submit(ctx context.Context, doc *documents.Document, signature string) (*Result, error) {
	start := time.Now()
	requestID := s.requestID()

	ctx = logging.WithRequestID(ctx, requestID)
	ctx, span := s.tracer.Start(ctx, tracing.SpanSubmit, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if err := documents.Validate(doc); err != nil {
		s.finish(ctx, span, StatusInvalid, start, 0, err)
		return nil, err
	}

	ctx = logging.WithDocID(ctx, doc.DocID)
	tracing.SetDocumentAttributes(span, doc.DocID, doc.DocType, len(doc.Products))

	waited, err := s.acquire(ctx)
	if err != nil {
		s.finish(ctx, span, StatusCanceled, start, 0, err)
		return nil, err
	}

	payload, err := documents.Encode(doc)
	if err != nil {
		err = fmt.Errorf("failed to encode document %s: %w", doc.DocID, err)
		s.finish(ctx, span, StatusFailed, start, 0, err)
		return nil, err
	}
	tracing.SetRequestAttributes(span, requestID, len(payload))

	resp, err := s.send(ctx, &Request{
		RequestID: requestID,
		DocID:     doc.DocID,
		Payload:   payload,
		Signature: signature,
	})
	if err != nil {
		s.finish(ctx, span, classify(err), start, len(payload), err)
		return nil, err
	}

	span.SetAttributes(attribute.Int(tracing.AttrStatusCode, resp.StatusCode))
	result := &Result{
		RequestID:  requestID,
		DocID:      doc.DocID,
		StatusCode: resp.StatusCode,
		Waited:     waited,
		Duration:   time.Since(start),
	}
	s.finish(ctx, span, StatusAccepted, start, len(payload), nil)
	s.logger.InfoContext(ctx, "document submitted",
		"status", resp.StatusCode,
		"waited", waited,
		"duration", result.Duration,
	)
	return result, nil
}

// acquire waits for capacity inside its own span.
func (s *Submitter) acquire(ctx context.Context) (time.Duration, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanAcquire)
	defer span.End()

	start := time.Now()
	err := s.limiter.Acquire(ctx)
	waited := time.Since(start)
	tracing.SetWaitAttribute(span, waited)
	if err != nil {
		tracing.SetErrorAttributes(span, err, "canceled")
		return waited, err
	}
	if waited > time.Millisecond {
		s.logger.DebugContext(ctx, "rate limit wait", "waited", waited)
	}
	return waited, nil
}

// send delivers the request inside its own span.
func (s *Submitter) send(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := s.tracer.Start(ctx, tracing.SpanSend, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	resp, err := s.transport.Send(ctx, req)
	if err != nil {
		tracing.SetErrorAttributes(span, err, tracing.ErrorType(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrStatusCode, resp.StatusCode))
	return resp, nil
}

// finish records metrics, span status and failure logs for one Submit.
func (s *Submitter) finish(ctx context.Context, span trace.Span, status string, start time.Time, payloadBytes int, err error) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(status, time.Since(start), payloadBytes)
	}
	if err == nil {
		tracing.SetStatus(span, nil)
		return
	}

	tracing.SetErrorAttributes(span, err, status)
	switch status {
	case StatusInvalid:
		s.logger.WarnContext(ctx, "document rejected by validation", "error", err)
	case StatusCanceled:
		s.logger.InfoContext(ctx, "submission canceled", "error", err)
	default:
		s.logger.ErrorContext(ctx, "document submission failed", "status", status, "error", err)
	}
}

// StatusOf returns the submission status an error returned by Submit
// stands for. A nil error is StatusAccepted.
func StatusOf(err error) string {
	var validationErr *documents.ValidationError
	switch {
	case err == nil:
		return StatusAccepted
	case errors.As(err, &validationErr):
		return StatusInvalid
	case errors.Is(err, ratelimit.ErrWaitCanceled):
		return StatusCanceled
	default:
		return classify(err)
	}
}

// classify maps a transport error to a submission status.
func classify(err error) string {
	var (
		apiErr     *APIError
		timeoutErr *TimeoutError
	)
	switch {
	case errors.As(err, &apiErr):
		return StatusRejected
	case errors.As(err, &timeoutErr):
		return StatusFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusFailed
	}
}
