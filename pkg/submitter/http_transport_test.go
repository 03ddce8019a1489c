package submitter

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/documents"
	"crpt-hq/ismp/pkg/limits/ratelimit"
)

func newTestTransport(t *testing.T, url string, timeout time.Duration) *HTTPTransport {
	t.Helper()
	transport, err := NewHTTPTransport(HTTPConfig{
		Endpoint: url,
		Timeout:  timeout,
	}, nil)
	if err != nil {
		t.Fatalf("NewHTTPTransport() error = %v", err)
	}
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

func TestNewHTTPTransport_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   HTTPConfig
		field string
	}{
		{"empty endpoint", HTTPConfig{}, "endpoint"},
		{"relative endpoint", HTTPConfig{Endpoint: "/api/v3/lk/documents/create"}, "endpoint"},
		{"negative timeout", HTTPConfig{Endpoint: "https://ismp.crpt.ru", Timeout: -time.Second}, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPTransport(tt.cfg, nil)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("expected ConfigError for %s, got %v", tt.field, err)
			}
		})
	}
}

func TestHTTPConfigFrom(t *testing.T) {
	cfg := config.Default().Registry
	hc := HTTPConfigFrom(cfg)
	if hc.Endpoint != config.DefaultRegistryEndpoint || hc.SignatureHeader != config.DefaultRegistrySignatureHeader {
		t.Errorf("unexpected conversion %+v", hc)
	}
}

func TestHTTPTransport_Send(t *testing.T) {
	type captured struct {
		method string
		header http.Header
		body   string
	}
	requests := make(chan captured, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests <- captured{method: r.Method, header: r.Header.Clone(), body: string(body)}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"value":"ignored"}`))
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, 5*time.Second)

	resp, err := transport.Send(context.Background(), &Request{
		RequestID: "req-1",
		Payload:   []byte(`{"doc_id":"1"}`),
		Signature: "sig-value",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	got := <-requests
	if got.method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.method)
	}
	if got.body != `{"doc_id":"1"}` {
		t.Errorf("body = %s", got.body)
	}
	if ct := got.header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if sig := got.header.Get(config.DefaultRegistrySignatureHeader); sig != "sig-value" {
		t.Errorf("signature header = %q", sig)
	}
	if id := got.header.Get("X-Request-ID"); id != "req-1" {
		t.Errorf("X-Request-ID = %q", id)
	}
	if ua := got.header.Get("User-Agent"); ua != config.DefaultRegistryUserAgent {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestHTTPTransport_OmitsEmptySignature(t *testing.T) {
	presence := make(chan bool, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header[http.CanonicalHeaderKey(config.DefaultRegistrySignatureHeader)]
		presence <- ok
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, time.Second)
	if _, err := transport.Send(context.Background(), &Request{Payload: []byte(`{}`)}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if <-presence {
		t.Error("signature header should be omitted when empty")
	}
}

func TestHTTPTransport_APIError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("  registry is down\n"))
	}))
	defer server.Close()

	transport := newTestTransport(t, server.URL, time.Second)
	resp, err := transport.Send(context.Background(), &Request{RequestID: "req-9", Payload: []byte(`{}`)})
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable || apiErr.Body != "registry is down" {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if apiErr.RetryAfter != 3*time.Second || apiErr.RequestID != "req-9" {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("expected a single attempt, got %d", n)
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	transport := newTestTransport(t, server.URL, 50*time.Millisecond)
	_, err := transport.Send(context.Background(), &Request{Payload: []byte(`{}`)})

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if timeoutErr.Timeout != 50*time.Millisecond {
		t.Errorf("timeout = %v", timeoutErr.Timeout)
	}
}

func TestHTTPTransport_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	transport := newTestTransport(t, server.URL, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := transport.Send(ctx, &Request{Payload: []byte(`{}`)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPTransport_TLSRoots(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	t.Run("untrusted registry", func(t *testing.T) {
		transport := newTestTransport(t, server.URL, 5*time.Second)
		_, err := transport.Send(context.Background(), &Request{Payload: []byte(`{}`)})
		var transportErr *TransportError
		if !errors.As(err, &transportErr) {
			t.Fatalf("expected TransportError, got %v", err)
		}
	})

	t.Run("trusted registry", func(t *testing.T) {
		roots := x509.NewCertPool()
		roots.AddCert(server.Certificate())
		transport, err := NewHTTPTransport(HTTPConfig{
			Endpoint: server.URL,
			Timeout:  5 * time.Second,
			TLS:      &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12},
		}, nil)
		if err != nil {
			t.Fatalf("NewHTTPTransport() error = %v", err)
		}
		defer transport.Close()

		resp, err := transport.Send(context.Background(), &Request{Payload: []byte(`{}`)})
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if resp.StatusCode != http.StatusAccepted {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	transport := newTestTransport(t, url, time.Second)
	_, err := transport.Send(context.Background(), &Request{Payload: []byte(`{}`)})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.Endpoint != url {
		t.Errorf("endpoint = %q", transportErr.Endpoint)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("empty = %v", got)
	}
	if got := parseRetryAfter("120"); got != 2*time.Minute {
		t.Errorf("seconds = %v", got)
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 59*time.Minute {
		t.Errorf("http date = %v", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("garbage = %v", got)
	}
}

// TestEndToEnd_FixedWindowPacing submits 7 documents back to back with a
// limit of 5 per second: the first 5 reach the registry immediately, the
// last 2 only after the window boundary.
func TestEndToEnd_FixedWindowPacing(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	limiter, err := ratelimit.NewFixedWindow(5, time.Second)
	if err != nil {
		t.Fatalf("NewFixedWindow() error = %v", err)
	}
	sub, err := New(limiter, newTestTransport(t, server.URL, 5*time.Second), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	start := time.Now()
	results := make([]*Result, 7)
	for i := range results {
		results[i], err = sub.Submit(context.Background(), validDocument("doc"), "sig")
		if err != nil {
			t.Fatalf("Submit(%d) error = %v", i, err)
		}
	}

	for i, r := range results {
		if r.StatusCode != http.StatusCreated {
			t.Errorf("result %d status = %d", i, r.StatusCode)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(arrivals) != 7 {
		t.Fatalf("registry saw %d requests, want 7", len(arrivals))
	}
	for i := 0; i < 5; i++ {
		if d := arrivals[i].Sub(start); d >= 900*time.Millisecond {
			t.Errorf("request %d arrived after %v, want immediate", i, d)
		}
		if results[i].Waited >= 500*time.Millisecond {
			t.Errorf("request %d waited %v", i, results[i].Waited)
		}
	}
	for i := 5; i < 7; i++ {
		if d := arrivals[i].Sub(start); d < time.Second {
			t.Errorf("request %d arrived after %v, want at least one window", i, d)
		}
		if d := arrivals[i].Sub(start); d > 2*time.Second {
			t.Errorf("request %d arrived after %v, want close to the boundary", i, d)
		}
	}
	if results[5].Waited < 500*time.Millisecond {
		t.Errorf("request 5 waited only %v", results[5].Waited)
	}
}

// TestEndToEnd_SubmitAllSliding runs a concurrent batch through a sliding
// log limiter and checks that no one-second interval saw more than 3
// requests.
func TestEndToEnd_SubmitAllSliding(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		if strings.Contains(r.Header.Get("X-Signature"), "reject") {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	const window = 300 * time.Millisecond
	limiter, err := ratelimit.New(ratelimit.Config{Strategy: ratelimit.StrategySliding, Limit: 3, Window: window})
	if err != nil {
		t.Fatalf("ratelimit.New() error = %v", err)
	}
	sub, _ := New(limiter, newTestTransport(t, server.URL, 5*time.Second), Options{})

	envelopes := make([]documents.Envelope, 8)
	for i := range envelopes {
		envelopes[i] = documents.Envelope{Document: *validDocument(string(rune('a' + i))), Signature: "sig"}
	}
	envelopes[3].Signature = "reject-me"
	envelopes[6].Document.DocType = ""

	outcomes := sub.SubmitAll(context.Background(), envelopes, 4)

	if len(outcomes) != len(envelopes) {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i || o.DocID != envelopes[i].Document.DocID {
			t.Errorf("outcome %d out of order: %+v", i, o)
		}
	}

	var apiErr *APIError
	if !errors.As(outcomes[3].Err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("outcome 3: expected APIError 400, got %v", outcomes[3].Err)
	}
	var verr *documents.ValidationError
	if !errors.As(outcomes[6].Err, &verr) {
		t.Errorf("outcome 6: expected ValidationError, got %v", outcomes[6].Err)
	}
	if n := Failed(outcomes); n != 2 {
		t.Errorf("Failed() = %d, want 2", n)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(arrivals) != 7 {
		t.Fatalf("registry saw %d requests, want 7", len(arrivals))
	}
	// Server-side arrival lags admission by a variable amount, so allow a
	// small tolerance below the window.
	sorted := slices.Clone(arrivals)
	slices.SortFunc(sorted, time.Time.Compare)
	for i := 0; i+3 < len(sorted); i++ {
		if d := sorted[i+3].Sub(sorted[i]); d < window-50*time.Millisecond {
			t.Errorf("requests %d and %d arrived %v apart, want about %v", i, i+3, d, window)
		}
	}
}

func TestSubmitAll_CanceledContext(t *testing.T) {
	var calls int
	var mu sync.Mutex
	transport := TransportFunc(func(ctx context.Context, req *Request) (*Response, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return &Response{StatusCode: 200}, nil
	})
	limiter, _ := ratelimit.NewFixedWindow(10, time.Second)
	sub, _ := New(limiter, transport, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	envelopes := []documents.Envelope{
		{Document: *validDocument("1")},
		{Document: *validDocument("2")},
	}
	outcomes := sub.SubmitAll(ctx, envelopes, 0)

	for i, o := range outcomes {
		if !errors.Is(o.Err, ratelimit.ErrWaitCanceled) {
			t.Errorf("outcome %d: expected ErrWaitCanceled, got %v", i, o.Err)
		}
	}
	if calls != 0 {
		t.Errorf("transport calls = %d, want 0", calls)
	}
}
