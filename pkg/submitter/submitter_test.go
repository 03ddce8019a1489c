package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/limits/ratelimit"
	"crpt-hq/ismp/pkg/telemetry/logging"
	"crpt-hq/ismp/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func validDocument(id string) *documents.Document {
	return &documents.Document{
		Description:    documents.Description{ParticipantINN: "7700000000"},
		DocID:          id,
		DocStatus:      "NEW",
		DocType:        documents.DocTypeIntroduceGoods,
		OwnerINN:       "7700000000",
		ParticipantINN: "7700000000",
		ProducerINN:    "7700000000",
		ProductionDate: "2020-01-23",
		ProductionType: "OWN_PRODUCTION",
		Products: []documents.Product{{
			TNVEDCode: "6401100000",
			UITCode:   "010463003407001221SxMGorvNuq6Wk91fgr92sbvSh",
		}},
	}
}

// countingLimiter admits everyone and counts calls.
type countingLimiter struct {
	calls atomic.Int32
}

func (l *countingLimiter) Acquire(ctx context.Context) error {
	l.calls.Add(1)
	return ctx.Err()
}

// recorder collects RecordSubmission calls.
type recorder struct {
	mu       sync.Mutex
	statuses []string
	payloads []int
}

func (r *recorder) RecordSubmission(status string, _ time.Duration, payloadBytes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	r.payloads = append(r.payloads, payloadBytes)
}

func (r *recorder) Statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statuses...)
}

func okTransport(calls *atomic.Int32) Transport {
	return TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		calls.Add(1)
		return &Response{StatusCode: 200}, nil
	})
}

func TestNew_RequiresCollaborators(t *testing.T) {
	var calls atomic.Int32

	if _, err := New(nil, okTransport(&calls), Options{}); err == nil {
		t.Error("expected error for nil limiter")
	}
	if _, err := New(&countingLimiter{}, nil, Options{}); err == nil {
		t.Error("expected error for nil transport")
	}

	var cfgErr *ConfigError
	_, err := New(nil, okTransport(&calls), Options{})
	if !errors.As(err, &cfgErr) || cfgErr.Field != "limiter" {
		t.Errorf("expected ConfigError for limiter, got %v", err)
	}
}

func TestSubmit_Success(t *testing.T) {
	doc := validDocument("doc-1")
	wantPayload, _ := documents.Encode(doc)

	var got *Request
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		got = req
		return &Response{StatusCode: 200}, nil
	})
	limiter := &countingLimiter{}
	rec := &recorder{}

	sub, err := New(limiter, transport, Options{
		Metrics:   rec,
		RequestID: func() string { return "req-1" },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := sub.Submit(context.Background(), doc, "c2lnbmF0dXJl")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if limiter.calls.Load() != 1 {
		t.Errorf("expected exactly one Acquire, got %d", limiter.calls.Load())
	}
	if got == nil {
		t.Fatal("transport was not called")
	}
	if !bytes.Equal(got.Payload, wantPayload) {
		t.Errorf("payload mismatch:\n got %s\nwant %s", got.Payload, wantPayload)
	}
	if got.Signature != "c2lnbmF0dXJl" {
		t.Errorf("signature = %q", got.Signature)
	}
	if got.RequestID != "req-1" || got.DocID != "doc-1" {
		t.Errorf("unexpected request identity %q/%q", got.RequestID, got.DocID)
	}

	if result.RequestID != "req-1" || result.DocID != "doc-1" || result.StatusCode != 200 {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Duration < result.Waited {
		t.Errorf("duration %v shorter than wait %v", result.Duration, result.Waited)
	}

	if s := rec.Statuses(); len(s) != 1 || s[0] != StatusAccepted {
		t.Errorf("recorded statuses = %v", s)
	}
	if rec.payloads[0] != len(wantPayload) {
		t.Errorf("recorded payload size = %d, want %d", rec.payloads[0], len(wantPayload))
	}
}

func TestSubmit_DefaultRequestIDIsUUID(t *testing.T) {
	var calls atomic.Int32
	sub, _ := New(&countingLimiter{}, okTransport(&calls), Options{})

	a, err := sub.Submit(context.Background(), validDocument("a"), "")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	b, _ := sub.Submit(context.Background(), validDocument("b"), "")

	if len(a.RequestID) != 36 || a.RequestID == b.RequestID {
		t.Errorf("expected distinct UUIDs, got %q and %q", a.RequestID, b.RequestID)
	}
}

func TestSubmit_InvalidDocumentUsesNoCapacity(t *testing.T) {
	var calls atomic.Int32
	limiter := &countingLimiter{}
	rec := &recorder{}
	sub, _ := New(limiter, okTransport(&calls), Options{Metrics: rec})

	doc := validDocument("bad")
	doc.OwnerINN = ""
	doc.Products = nil

	_, err := sub.Submit(context.Background(), doc, "sig")

	var verr *documents.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", verr.Fields)
	}
	if limiter.calls.Load() != 0 {
		t.Error("invalid document must not acquire capacity")
	}
	if calls.Load() != 0 {
		t.Error("invalid document must not be sent")
	}
	if s := rec.Statuses(); len(s) != 1 || s[0] != StatusInvalid {
		t.Errorf("recorded statuses = %v", s)
	}

	if _, err := sub.Submit(context.Background(), nil, ""); !errors.As(err, &verr) {
		t.Errorf("nil document: expected ValidationError, got %v", err)
	}
}

func TestSubmit_CanceledWhileWaiting(t *testing.T) {
	limiter, err := ratelimit.NewFixedWindow(1, time.Hour)
	if err != nil {
		t.Fatalf("NewFixedWindow() error = %v", err)
	}
	var calls atomic.Int32
	rec := &recorder{}
	sub, _ := New(limiter, okTransport(&calls), Options{Metrics: rec})

	if _, err := sub.Submit(context.Background(), validDocument("first"), ""); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = sub.Submit(ctx, validDocument("second"), "")
	if !errors.Is(err, ratelimit.ErrWaitCanceled) {
		t.Fatalf("expected ErrWaitCanceled, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took %v", elapsed)
	}
	if calls.Load() != 1 {
		t.Errorf("canceled submission must not be sent, transport calls = %d", calls.Load())
	}
	if s := rec.Statuses(); len(s) != 2 || s[1] != StatusCanceled {
		t.Errorf("recorded statuses = %v", s)
	}
}

func TestSubmit_TransportErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{"api error", &APIError{StatusCode: 500, Body: "boom"}, StatusRejected},
		{"timeout", &TimeoutError{Timeout: time.Second, Cause: context.DeadlineExceeded}, StatusFailed},
		{"network", &TransportError{Endpoint: "http://x", Cause: errors.New("connection refused")}, StatusFailed},
		{"canceled", fmt.Errorf("request canceled: %w", context.Canceled), StatusCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
				calls.Add(1)
				return nil, tt.err
			})
			rec := &recorder{}
			sub, _ := New(&countingLimiter{}, transport, Options{Metrics: rec})

			result, err := sub.Submit(context.Background(), validDocument("doc"), "")
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected transport error to be returned unchanged, got %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected exactly one send, got %d", calls.Load())
			}
			if s := rec.Statuses(); len(s) != 1 || s[0] != tt.wantStatus {
				t.Errorf("recorded statuses = %v, want [%s]", s, tt.wantStatus)
			}
		})
	}
}

func TestSubmit_LogsCarryRequestAndDocID(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}

	var calls atomic.Int32
	sub, _ := New(&countingLimiter{}, okTransport(&calls), Options{
		Logger:    logger,
		RequestID: func() string { return "req-42" },
	})

	if _, err := sub.Submit(context.Background(), validDocument("doc-42"), "secret-signature-value"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q", line)
	}
	if entry["msg"] != "document submitted" || entry["request_id"] != "req-42" || entry["doc_id"] != "doc-42" {
		t.Errorf("unexpected log entry %v", entry)
	}
	if strings.Contains(line, "secret-signature-value") {
		t.Error("signature must never be logged")
	}
}

func TestSubmit_Spans(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tracer, err := tracing.New(&config.TracingConfig{Enabled: true, Sampler: "always", ServiceName: "test"},
		tracing.WithSpanProcessor(spans))
	if err != nil {
		t.Fatalf("tracing.New() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	var calls atomic.Int32
	sub, _ := New(&countingLimiter{}, okTransport(&calls), Options{Tracer: tracer.Tracer()})

	if _, err := sub.Submit(context.Background(), validDocument("doc-1"), ""); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	ended := spans.Ended()
	names := make([]string, len(ended))
	for i, s := range ended {
		names[i] = s.Name()
	}
	want := []string{tracing.SpanAcquire, tracing.SpanSend, tracing.SpanSubmit}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("spans = %v, want %v", names, want)
	}
	root := ended[2].SpanContext().SpanID()
	for _, child := range ended[:2] {
		if child.Parent().SpanID() != root {
			t.Errorf("span %s is not a child of %s", child.Name(), tracing.SpanSubmit)
		}
	}
}

func TestSubmit_ConcurrentCallersShareLimiter(t *testing.T) {
	limiter, _ := ratelimit.NewFixedWindow(3, time.Hour)
	var calls atomic.Int32
	sub, _ := New(limiter, okTransport(&calls), Options{
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var accepted, canceled atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := sub.Submit(ctx, validDocument(fmt.Sprintf("doc-%d", i)), "")
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ratelimit.ErrWaitCanceled):
				canceled.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != 3 || canceled.Load() != 7 {
		t.Errorf("accepted=%d canceled=%d, want 3/7", accepted.Load(), canceled.Load())
	}
	if calls.Load() != 3 {
		t.Errorf("transport calls = %d, want 3", calls.Load())
	}
}

func TestSubmitEach_CallbackPerEnvelope(t *testing.T) {
	var calls atomic.Int32
	sub, err := New(&countingLimiter{}, okTransport(&calls), Options{Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatal(err)
	}

	envelopes := []documents.Envelope{
		{Document: *validDocument("doc-1"), Signature: "c2ln"},
		{Document: documents.Document{DocID: "broken"}},
		{Document: *validDocument("doc-3"), Signature: "c2ln"},
	}

	var (
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	outcomes := sub.SubmitEach(context.Background(), envelopes, 2, func(o Outcome) {
		mu.Lock()
		defer mu.Unlock()
		seen[o.DocID] = o.OK()
	})

	if len(seen) != 3 {
		t.Fatalf("callback saw %d outcomes, want 3", len(seen))
	}
	if !seen["doc-1"] || seen["broken"] || !seen["doc-3"] {
		t.Errorf("callback outcomes = %v", seen)
	}
	if Failed(outcomes) != 1 || calls.Load() != 2 {
		t.Errorf("Failed = %d, sent = %d; want 1 and 2", Failed(outcomes), calls.Load())
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcome %d has Index %d", i, o.Index)
		}
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: StatusAccepted},
		{name: "validation", err: documents.Validate(&documents.Document{}), want: StatusInvalid},
		{name: "wait canceled", err: fmt.Errorf("%w: %w", ratelimit.ErrWaitCanceled, context.Canceled), want: StatusCanceled},
		{name: "api", err: &APIError{StatusCode: 400}, want: StatusRejected},
		{name: "timeout", err: &TimeoutError{Cause: context.DeadlineExceeded}, want: StatusFailed},
		{name: "send canceled", err: fmt.Errorf("request r canceled: %w", context.Canceled), want: StatusCanceled},
		{name: "transport", err: &TransportError{Cause: errors.New("refused")}, want: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
