package submitter

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crpt-hq/ismp/pkg/config"
	"crpt-hq/ismp/pkg/telemetry/tracing"
)

// maxErrorBody bounds how much of an error response is kept in APIError.
const maxErrorBody = 4096

// HTTPConfig contains configuration for HTTPTransport.
type HTTPConfig struct {
	// Endpoint is the URL documents are POSTed to
	Endpoint string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// SignatureHeader is the header the signature is sent in
	SignatureHeader string

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections are kept
	IdleConnTimeout time.Duration

	// UserAgent is sent with every request
	UserAgent string

	// TLS is the client TLS configuration. Nil uses Go's defaults.
	TLS *tls.Config
}

// HTTPConfigFrom converts the registry section of the configuration file.
func HTTPConfigFrom(cfg config.RegistryConfig) HTTPConfig {
	return HTTPConfig{
		Endpoint:        cfg.Endpoint,
		Timeout:         cfg.Timeout,
		SignatureHeader: cfg.SignatureHeader,
		MaxIdleConns:    cfg.MaxIdleConns,
		IdleConnTimeout: cfg.IdleConnTimeout,
		UserAgent:       cfg.UserAgent,
	}
}

// HTTPTransport posts documents to the registry over HTTP with a pooled
// client. It never retries.
type HTTPTransport struct {
	config HTTPConfig
	client *http.Client
	logger *slog.Logger
}

// NewHTTPTransport creates a transport with connection pooling.
func NewHTTPTransport(cfg HTTPConfig, logger *slog.Logger) (*HTTPTransport, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &ConfigError{Field: "endpoint", Message: fmt.Sprintf("invalid URL %q", cfg.Endpoint)}
	}
	if cfg.Timeout < 0 {
		return nil, &ConfigError{Field: "timeout", Message: "cannot be negative"}
	}
	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = config.DefaultRegistrySignatureHeader
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.DefaultRegistryUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSClientConfig:     cfg.TLS,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPTransport{
		config: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: logger,
	}, nil
}

// Send performs one POST of req.Payload to the configured endpoint.
func (t *HTTPTransport) Send(ctx context.Context, r *Request) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.Endpoint, bytes.NewReader(r.Payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.config.UserAgent)
	if r.RequestID != "" {
		req.Header.Set("X-Request-ID", r.RequestID)
	}
	if r.Signature != "" {
		req.Header.Set(t.config.SignatureHeader, r.Signature)
	}
	tracing.Inject(ctx, req.Header)

	t.logger.DebugContext(ctx, "sending document",
		"url", t.config.Endpoint,
		"bytes", len(r.Payload),
	)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("request %s canceled: %w", r.RequestID, ctxErr)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &TimeoutError{RequestID: r.RequestID, Timeout: t.config.Timeout, Cause: err}
		}
		return nil, &TransportError{RequestID: r.RequestID, Endpoint: t.config.Endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// The body is not interpreted; drain it so the connection is reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &Response{StatusCode: resp.StatusCode}, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil, &APIError{
		RequestID:  r.RequestID,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

// Close releases idle connections.
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
