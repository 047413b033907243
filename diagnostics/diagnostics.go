// Package diagnostics runs independent health probes against a site: ping,
// HTTP redirect trace, TLS certificate, DNS records and WHOIS. Every probe
// reports its own status and none of them can fail the report as a whole.
package diagnostics

import (
	"context"
	"crypto/tls"
	"net/url"
	"strings"
	"time"

	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/logger"
)

// Status values shared by every probe result.
const (
	StatusSuccess         = "success"
	StatusError           = "error"
	StatusTimeout         = "timeout"
	StatusConnectionError = "connection_error"
	StatusSSLError        = "ssl_error"
)

// Defaults for Config.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultCommandTimeout = 30 * time.Second
)

// Config holds probe settings.
type Config struct {
	// Timeout bounds each HTTP request and the TLS handshake.
	Timeout time.Duration
	// CommandTimeout bounds the ping and whois subprocesses.
	CommandTimeout time.Duration
	// UserAgent is sent by the HTTP probe.
	UserAgent string
	// Nameserver is the host:port used for DNS queries. Empty means the
	// first server of /etc/resolv.conf.
	Nameserver string
}

// Report is the composite outcome of Run.
type Report struct {
	URL       string      `json:"url"`
	Timestamp time.Time   `json:"timestamp"`
	Ping      PingResult  `json:"ping"`
	HTTP      HTTPResult  `json:"http"`
	SSL       TLSResult   `json:"ssl"`
	DNS       DNSResult   `json:"dns"`
	Whois     WhoisResult `json:"whois"`
}

// Prober runs the probes. It holds no per-call state and is safe for
// concurrent use.
type Prober struct {
	config    Config
	client    *fetch.Client
	runner    Runner
	resolver  Resolver
	tlsConfig *tls.Config
	now       func() time.Time
	log       logger.Logger
}

// New creates a Prober that shells out to the system ping and whois
// binaries and queries DNS with miekg/dns. A nil log discards output.
func New(cfg Config, log logger.Logger) *Prober {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}

	return &Prober{
		config: cfg,
		client: fetch.NewClient(fetch.Config{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
		}),
		runner:   ExecRunner{},
		resolver: NewResolver(cfg.Nameserver, cfg.Timeout),
		now:      time.Now,
		log:      log,
	}
}

// WithRunner replaces the subprocess runner and returns the prober.
func (p *Prober) WithRunner(r Runner) *Prober {
	p.runner = r
	return p
}

// WithResolver replaces the DNS resolver and returns the prober.
func (p *Prober) WithResolver(r Resolver) *Prober {
	p.resolver = r
	return p
}

// Run executes all five probes in order and returns every result.
func (p *Prober) Run(ctx context.Context, target string) *Report {
	report := &Report{URL: target, Timestamp: p.now()}

	report.Ping = p.Ping(ctx, target)
	report.HTTP = p.HTTP(ctx, target)
	report.SSL = p.TLS(ctx, target)
	report.DNS = p.DNS(ctx, target)
	report.Whois = p.Whois(ctx, target)

	p.log.Info("Diagnostics finished",
		logger.URL(target),
		logger.String("ping", report.Ping.Status),
		logger.String("http", report.HTTP.Status),
		logger.String("ssl", report.SSL.Status),
		logger.String("dns", report.DNS.Status),
		logger.String("whois", report.Whois.Status),
	)

	return report
}

// withScheme prefixes https:// unless target already names a scheme.
func withScheme(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "https://" + target
}

// hostOf returns the host name of target, which may be a URL or a bare
// domain.
func hostOf(target string) string {
	u, err := url.Parse(withScheme(target))
	if err != nil {
		return strings.TrimSpace(target)
	}
	return u.Hostname()
}

// registeredDomain is hostOf without a leading "www.".
func registeredDomain(target string) string {
	return strings.TrimPrefix(hostOf(target), "www.")
}
