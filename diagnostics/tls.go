package diagnostics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/seodesk/seodesk/logger"
)

// TLSResult describes the leaf certificate presented by the site.
type TLSResult struct {
	Status          string    `json:"status"`
	Domain          string    `json:"domain,omitempty"`
	Issuer          string    `json:"issuer,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	NotBefore       time.Time `json:"not_before"`
	NotAfter        time.Time `json:"not_after"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	SerialNumber    string    `json:"serial_number,omitempty"`
	Version         int       `json:"version,omitempty"`
	IsValid         bool      `json:"is_valid"`
	Error           string    `json:"error,omitempty"`
}

// TLS connects to port 443, or the port named in target, verifies the
// chain and reports the peer certificate.
func (p *Prober) TLS(ctx context.Context, target string) TLSResult {
	u, err := url.Parse(withScheme(target))
	if err != nil || u.Hostname() == "" {
		return TLSResult{Status: StatusError, Error: fmt.Sprintf("invalid url %q", target)}
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}
	result := TLSResult{Domain: host}

	config := &tls.Config{ServerName: host}
	if p.tlsConfig != nil {
		config = p.tlsConfig.Clone()
		config.ServerName = host
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.config.Timeout},
		Config:    config,
	}
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		result.Status, result.Error = classifyTLSError(err)
		p.log.Warn("TLS probe failed", logger.String("domain", host), logger.Error(err))
		return result
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		result.Status = StatusSSLError
		result.Error = "no peer certificate"
		return result
	}
	cert := certs[0]

	result.Status = StatusSuccess
	result.Issuer = cert.Issuer.String()
	result.Subject = cert.Subject.String()
	result.NotBefore = cert.NotBefore.UTC()
	result.NotAfter = cert.NotAfter.UTC()
	result.SerialNumber = fmt.Sprintf("%X", cert.SerialNumber)
	result.Version = cert.Version
	result.DaysUntilExpiry = daysUntil(p.now(), cert.NotAfter)
	result.IsValid = result.DaysUntilExpiry > 0
	return result
}

// daysUntil counts whole days from now to t, rounding down.
func daysUntil(now, t time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

func classifyTLSError(err error) (string, string) {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return StatusTimeout, "SSL connection timeout"
	}

	var (
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		authority   x509.UnknownAuthorityError
		invalidCert x509.CertificateInvalidError
		hostname    x509.HostnameError
	)
	switch {
	case errors.As(err, &verifyErr), errors.As(err, &recordErr), errors.As(err, &alertErr),
		errors.As(err, &authority), errors.As(err, &invalidCert), errors.As(err, &hostname):
		return StatusSSLError, fmt.Sprintf("SSL error: %v", err)
	}

	return StatusError, err.Error()
}
