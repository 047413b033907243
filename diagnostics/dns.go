package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/seodesk/seodesk/logger"
)

// RecordTypes lists the record types queried, in report order.
var RecordTypes = []string{"A", "AAAA", "MX", "CNAME", "TXT", "NS"}

// fallbackNameserver is used when resolv.conf cannot be read.
const fallbackNameserver = "8.8.8.8:53"

// Resolver sends a single DNS query.
type Resolver interface {
	Exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error)
}

type dnsResolver struct {
	client *dns.Client
	server string
}

// NewResolver returns a Resolver that queries server over UDP, retrying
// over TCP on truncation. An empty server means the first entry of
// /etc/resolv.conf.
func NewResolver(server string, timeout time.Duration) Resolver {
	if server == "" {
		server = fallbackNameserver
		if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(conf.Servers) > 0 {
			server = net.JoinHostPort(conf.Servers[0], conf.Port)
		}
	}
	return &dnsResolver{client: &dns.Client{Timeout: timeout}, server: server}
}

func (r *dnsResolver) Exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error) {
	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		tcp := &dns.Client{Net: "tcp", Timeout: r.client.Timeout}
		resp, _, err = tcp.ExchangeContext(ctx, m, r.server)
	}
	return resp, err
}

// DNSResult maps each record type to its values. A type with no records
// maps to an empty list; a failed query holds a single "Error: ..." entry.
// MX values read "<preference> <exchange>".
type DNSResult struct {
	Status  string              `json:"status"`
	Domain  string              `json:"domain"`
	Records map[string][]string `json:"records"`
	Error   string              `json:"error,omitempty"`
}

// DNS queries every type in RecordTypes for the domain of target, with a
// leading "www." removed.
func (p *Prober) DNS(ctx context.Context, target string) DNSResult {
	domain := registeredDomain(target)
	if domain == "" {
		return DNSResult{Status: StatusError, Records: map[string][]string{}, Error: "empty domain"}
	}

	result := DNSResult{Status: StatusSuccess, Domain: domain, Records: make(map[string][]string, len(RecordTypes))}
	for _, name := range RecordTypes {
		values, err := p.lookup(ctx, domain, dns.StringToType[name])
		if err != nil {
			p.log.Warn("DNS query failed", logger.String("domain", domain), logger.String("type", name), logger.Error(err))
			values = []string{"Error: " + err.Error()}
		}
		result.Records[name] = values
	}
	return result
}

func (p *Prober) lookup(ctx context.Context, domain string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), qtype)
	m.RecursionDesired = true

	resp, err := p.resolver.Exchange(ctx, m)
	if err != nil {
		return nil, err
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return []string{}, nil
	default:
		return nil, errors.New(dns.RcodeToString[resp.Rcode])
	}

	values := []string{}
	for _, rr := range resp.Answer {
		if rr.Header().Rrtype != qtype {
			continue
		}
		switch v := rr.(type) {
		case *dns.A:
			values = append(values, v.A.String())
		case *dns.AAAA:
			values = append(values, v.AAAA.String())
		case *dns.MX:
			values = append(values, fmt.Sprintf("%d %s", v.Preference, v.Mx))
		case *dns.CNAME:
			values = append(values, v.Target)
		case *dns.TXT:
			values = append(values, strings.Join(v.Txt, ""))
		case *dns.NS:
			values = append(values, v.Ns)
		}
	}
	return values, nil
}
