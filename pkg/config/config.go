package config

import "time"

// Config is the root configuration structure for the ISMP client.
// It contains the registry endpoint, rate limits, batch submission,
// spool directory and telemetry settings.
type Config struct {
	// Registry contains the document registry endpoint and HTTP client settings.
	Registry RegistryConfig `yaml:"registry"`

	// Limits contains the client-side rate limit applied to every submission.
	Limits LimitsConfig `yaml:"limits"`

	// Submit contains batch submission settings.
	Submit SubmitConfig `yaml:"submit"`

	// Spool contains configuration for processing envelopes from a directory.
	Spool SpoolConfig `yaml:"spool"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RegistryConfig contains configuration for the document registry API.
type RegistryConfig struct {
	// Endpoint is the URL documents are POSTed to.
	// Default: "https://ismp.crpt.ru/api/v3/lk/documents/create"
	Endpoint string `yaml:"endpoint"`

	// Timeout is the maximum duration of a single POST, including reading
	// the response.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// SignatureHeader is the HTTP header carrying the document signature.
	// Default: "X-Signature"
	SignatureHeader string `yaml:"signature_header"`

	// MaxIdleConns is the maximum number of idle keep-alive connections.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`

	// IdleConnTimeout is how long an idle connection stays in the pool.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`

	// UserAgent is sent with every request.
	// Default: "ismp-client"
	UserAgent string `yaml:"user_agent"`

	// TLS contains the client TLS settings used for the registry.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig contains the registry client's TLS settings. The zero value
// trusts the system roots and presents no client certificate.
type TLSConfig struct {
	// CAFile is a PEM bundle of additional trusted roots.
	CAFile string `yaml:"ca_file"`

	// CertFile is the PEM client certificate presented to the registry.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the PEM private key of CertFile.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version.
	// Options: "1.2", "1.3"
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ServerName overrides the host name used to verify the registry.
	ServerName string `yaml:"server_name"`

	// ReloadInterval is how often the client certificate files are checked
	// for changes.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"cert_reload_interval"`
}

// LimitsConfig contains the rate limit configuration.
type LimitsConfig struct {
	// Strategy selects the limiting algorithm.
	// Options: "fixed", "sliding"
	// Default: "fixed"
	Strategy string `yaml:"strategy"`

	// Window is the length of the rate limit window.
	// Default: 1s
	Window time.Duration `yaml:"window"`

	// RequestLimit is the maximum number of submissions per window.
	// Default: 5
	RequestLimit int `yaml:"request_limit"`
}

// SubmitConfig contains batch submission configuration.
type SubmitConfig struct {
	// Workers is the number of concurrent submissions in a batch.
	// All workers share the same rate limiter.
	// Default: 4
	Workers int `yaml:"workers"`
}

// SpoolConfig contains configuration for the spool directory processor.
type SpoolConfig struct {
	// Inbox is the directory scanned for *.json envelopes.
	// Processed files are moved to done/ and failed/ subdirectories.
	// Default: "./spool/inbox"
	Inbox string `yaml:"inbox"`

	// Schedule is a cron expression for periodic processing.
	// Supports standard cron syntax and descriptors such as "@every 30s".
	// Default: "@every 30s"
	Schedule string `yaml:"schedule"`

	// Debounce is how long the watcher waits after the last file event
	// before processing the inbox.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactSignature masks document signatures in logs.
	// Default: true
	RedactSignature *bool `yaml:"redact_signature"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address of the telemetry HTTP server.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "ismp"
	Namespace string `yaml:"namespace"`

	// WaitBuckets are histogram buckets for limiter wait time in seconds.
	// Default: [0, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10]
	WaitBuckets []float64 `yaml:"wait_buckets"`

	// DurationBuckets are histogram buckets for submission duration in seconds.
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the export timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "ismp-client"
	ServiceName string `yaml:"service_name"`
}

// ShouldRedactSignature reports whether signatures are masked in logs.
// An unset value means true.
func (c LoggingConfig) ShouldRedactSignature() bool {
	return c.RedactSignature == nil || *c.RedactSignature
}
