package config

import "time"

// Default values for configuration fields.
const (
	// Registry defaults
	DefaultRegistryEndpoint        = "https://ismp.crpt.ru/api/v3/lk/documents/create"
	DefaultRegistryTimeout         = 30 * time.Second
	DefaultRegistrySignatureHeader = "X-Signature"
	DefaultRegistryMaxIdleConns    = 10
	DefaultRegistryIdleConnTimeout = 90 * time.Second
	DefaultRegistryUserAgent       = "ismp-client"

	// Limits defaults
	DefaultLimitsStrategy     = "fixed"
	DefaultLimitsWindow       = time.Second
	DefaultLimitsRequestLimit = 5

	// Submit defaults
	DefaultSubmitWorkers = 4

	// Spool defaults
	DefaultSpoolInbox    = "./spool/inbox"
	DefaultSpoolSchedule = "@every 30s"
	DefaultSpoolDebounce = 200 * time.Millisecond

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "json"
	DefaultMetricsListenAddress = "127.0.0.1:9090"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "ismp"
	DefaultTracingSampler       = "always"
	DefaultTracingSampleRatio   = 1.0
	DefaultTracingTimeout       = 10 * time.Second
	DefaultTracingServiceName   = "ismp-client"
)

var (
	// DefaultWaitBuckets are limiter wait histogram buckets in seconds.
	DefaultWaitBuckets = []float64{0, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultDurationBuckets are submission duration histogram buckets in seconds.
	DefaultDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
)

// ApplyDefaults fills every zero-valued field of cfg with its default value.
// It cannot tell an explicit zero from a missing value, so loaders decode
// over Default() instead of calling it after decoding.
func ApplyDefaults(cfg *Config) {
	// Registry defaults
	if cfg.Registry.Endpoint == "" {
		cfg.Registry.Endpoint = DefaultRegistryEndpoint
	}
	if cfg.Registry.Timeout == 0 {
		cfg.Registry.Timeout = DefaultRegistryTimeout
	}
	if cfg.Registry.SignatureHeader == "" {
		cfg.Registry.SignatureHeader = DefaultRegistrySignatureHeader
	}
	if cfg.Registry.MaxIdleConns == 0 {
		cfg.Registry.MaxIdleConns = DefaultRegistryMaxIdleConns
	}
	if cfg.Registry.IdleConnTimeout == 0 {
		cfg.Registry.IdleConnTimeout = DefaultRegistryIdleConnTimeout
	}
	if cfg.Registry.UserAgent == "" {
		cfg.Registry.UserAgent = DefaultRegistryUserAgent
	}

	// Limits defaults
	if cfg.Limits.Strategy == "" {
		cfg.Limits.Strategy = DefaultLimitsStrategy
	}
	if cfg.Limits.Window == 0 {
		cfg.Limits.Window = DefaultLimitsWindow
	}
	if cfg.Limits.RequestLimit == 0 {
		cfg.Limits.RequestLimit = DefaultLimitsRequestLimit
	}

	// Submit defaults
	if cfg.Submit.Workers == 0 {
		cfg.Submit.Workers = DefaultSubmitWorkers
	}

	// Spool defaults
	if cfg.Spool.Inbox == "" {
		cfg.Spool.Inbox = DefaultSpoolInbox
	}
	if cfg.Spool.Schedule == "" {
		cfg.Spool.Schedule = DefaultSpoolSchedule
	}
	if cfg.Spool.Debounce == 0 {
		cfg.Spool.Debounce = DefaultSpoolDebounce
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLogLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLogFormat
	}

	if t.Metrics.ListenAddress == "" {
		t.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.WaitBuckets) == 0 {
		t.Metrics.WaitBuckets = append([]float64(nil), DefaultWaitBuckets...)
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
		if t.Tracing.SampleRatio == 0 {
			t.Tracing.SampleRatio = DefaultTracingSampleRatio
		}
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
