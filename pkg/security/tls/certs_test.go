package tls

import (
	"crypto/tls"
	"crypto/x509"
	"strings"
	"testing"
	"time"
)

func TestValidateCertificate(t *testing.T) {
	ca := newTestCA(t)
	certPEM, keyPEM := ca.issue(t, "client", 2, x509.ExtKeyUsageClientAuth,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	valid, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("X509KeyPair() error = %v", err)
	}

	expiredPEM, expiredKey := ca.issue(t, "client", 3, x509.ExtKeyUsageClientAuth,
		time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	expired, err := tls.X509KeyPair(expiredPEM, expiredKey)
	if err != nil {
		t.Fatalf("X509KeyPair() error = %v", err)
	}

	tests := []struct {
		name        string
		cert        *tls.Certificate
		expectError string
	}{
		{"valid certificate", &valid, ""},
		{"expired certificate", &expired, "expired"},
		{"nil certificate", nil, "nil"},
		{"empty chain", &tls.Certificate{}, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCertificate(tt.cert)
			if tt.expectError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("error = %v, want %q", err, tt.expectError)
			}
		})
	}
}

func TestValidateX509Certificate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cert := &x509.Certificate{
		NotBefore: now.Add(-24 * time.Hour),
		NotAfter:  now.Add(24 * time.Hour),
	}

	if err := ValidateX509Certificate(cert, now); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateX509Certificate(cert, now.Add(-48*time.Hour)); err == nil || !strings.Contains(err.Error(), "not yet valid") {
		t.Errorf("error = %v, want not yet valid", err)
	}
	if err := ValidateX509Certificate(cert, now.Add(48*time.Hour)); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("error = %v, want expired", err)
	}
}

func TestCheckCertificateExpiration(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		notAfter    time.Time
		wantDays    int
		wantWarning bool
	}{
		{"a year left", now.Add(365 * 24 * time.Hour), 365, false},
		{"ten days left", now.Add(10 * 24 * time.Hour), 10, true},
		{"expired", now.Add(-48 * time.Hour), -2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, warning := CheckCertificateExpiration(&x509.Certificate{NotAfter: tt.notAfter}, now)
			if days != tt.wantDays {
				t.Errorf("days = %d, want %d", days, tt.wantDays)
			}
			if (warning != "") != tt.wantWarning {
				t.Errorf("warning = %q", warning)
			}
		})
	}
}
