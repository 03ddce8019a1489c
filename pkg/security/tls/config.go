package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crpt-hq/ismp/pkg/config"
)

// DefaultReloadInterval is used when ClientConfig.ReloadInterval is zero.
const DefaultReloadInterval = 5 * time.Minute

// ClientConfig describes how the registry client sets up TLS.
// A zero ClientConfig uses the system roots and presents no certificate.
type ClientConfig struct {
	// CAFile is a PEM bundle of additional roots trusted for the registry
	CAFile string

	// CertFile and KeyFile hold the client certificate presented to the
	// registry. Both or neither must be set.
	CertFile string
	KeyFile  string

	// MinVersion is the minimum TLS version ("1.2" or "1.3")
	MinVersion string

	// ServerName overrides the name used to verify the registry certificate
	ServerName string

	// ReloadInterval is how often the client certificate files are checked
	// for changes
	ReloadInterval time.Duration
}

// ClientConfigFrom converts the registry.tls section of the configuration file.
func ClientConfigFrom(cfg config.TLSConfig) ClientConfig {
	return ClientConfig{
		CAFile:         cfg.CAFile,
		CertFile:       cfg.CertFile,
		KeyFile:        cfg.KeyFile,
		MinVersion:     cfg.MinVersion,
		ServerName:     cfg.ServerName,
		ReloadInterval: cfg.ReloadInterval,
	}
}

// Customized reports whether c differs from the default client TLS setup.
func (c *ClientConfig) Customized() bool {
	return c.CAFile != "" || c.CertFile != "" || c.MinVersion != "" || c.ServerName != ""
}

// Build creates a crypto/tls.Config for the registry client.
//
// When a client certificate is configured, Build also returns a
// CertificateReloader serving it. The reloader has loaded the certificate
// already; call Start to pick up renewed files.
func (c *ClientConfig) Build(logger *slog.Logger) (*tls.Config, *CertificateReloader, error) {
	if (c.CertFile == "") != (c.KeyFile == "") {
		return nil, nil, errors.New("cert_file and key_file must be set together")
	}

	minVersion, err := parseTLSVersion(c.MinVersion)
	if err != nil {
		return nil, nil, err
	}

	// #nosec G402 - MinVersion is validated (TLS 1.0/1.1 rejected)
	tlsConfig := &tls.Config{
		MinVersion: minVersion,
		ServerName: c.ServerName,
	}

	if c.CAFile != "" {
		pool, err := loadCertPool(c.CAFile)
		if err != nil {
			return nil, nil, err
		}
		tlsConfig.RootCAs = pool
	}

	if c.CertFile == "" {
		return tlsConfig, nil, nil
	}

	interval := c.ReloadInterval
	if interval <= 0 {
		interval = DefaultReloadInterval
	}
	reloader := NewCertificateReloader(c.CertFile, c.KeyFile, interval, logger)
	if err := reloader.reload(); err != nil {
		return nil, nil, fmt.Errorf("failed to load client certificate: %w", err)
	}
	reloader.logCertificateInfo()
	tlsConfig.GetClientCertificate = reloader.GetClientCertificateFunc()

	return tlsConfig, reloader, nil
}

// parseTLSVersion converts a MinVersion string to a tls.Version constant.
// TLS 1.0 and 1.1 are not supported.
func parseTLSVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q: must be '1.2' or '1.3'", v)
	}
}

// loadCertPool reads a PEM bundle into a new pool.
func loadCertPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}
