package diagnostics

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/seodesk/seodesk/logger"
)

var (
	whoisRegistrar = regexp.MustCompile(`(?i)Registrar:\s*(.+)`)
	whoisCreated   = regexp.MustCompile(`(?i)(?:Creation Date|created):\s*(.+)`)
	whoisExpires   = regexp.MustCompile(`(?i)(?:Registry Expiry Date|paid-till):\s*(.+)`)
	whoisStatus    = regexp.MustCompile(`(?i)(?:Status|state):\s*(.+)`)
)

// whoisDateLayouts are tried in order against the first token of the
// creation date.
var whoisDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006.01.02",
	"02.01.2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
	"02-Jan-2006",
}

// WhoisInfo holds the fields read from WHOIS output. Age is set only when
// the creation date could be parsed.
type WhoisInfo struct {
	Registrar string `json:"registrar,omitempty"`
	Created   string `json:"created,omitempty"`
	AgeDays   *int   `json:"age_days,omitempty"`
	AgeYears  *int   `json:"age_years,omitempty"`
	Expires   string `json:"expires,omitempty"`
	Status    string `json:"status,omitempty"`
}

// WhoisResult is the outcome of the WHOIS probe.
type WhoisResult struct {
	Status  string    `json:"status"`
	Domain  string    `json:"domain"`
	Info    WhoisInfo `json:"info"`
	RawData string    `json:"raw_data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Whois runs the system whois client for the domain of target and picks a
// few fields out of its free-form output. A non-zero exit still yields
// whatever was printed.
func (p *Prober) Whois(ctx context.Context, target string) WhoisResult {
	domain := registeredDomain(target)
	result := WhoisResult{Domain: domain}

	ctx, cancel := context.WithTimeout(ctx, p.config.CommandTimeout)
	defer cancel()

	stdout, _, err := p.runner.Run(ctx, "whois", domain)
	var exitErr *exec.ExitError
	switch {
	case err == nil, errors.As(err, &exitErr):
	case errors.Is(err, context.DeadlineExceeded):
		result.Status = StatusTimeout
		result.Error = "WHOIS timeout"
	case errors.Is(err, exec.ErrNotFound):
		result.Status = StatusError
		result.Error = "whois command not found"
	default:
		result.Status = StatusError
		result.Error = err.Error()
	}
	if result.Status != "" {
		p.log.Warn("WHOIS probe failed", logger.String("domain", domain), logger.String("error", result.Error))
		return result
	}

	result.Status = StatusSuccess
	result.RawData = stdout
	result.Info = parseWhois(stdout, p.now())
	return result
}

// parseWhois extracts registrar, dates and status. Unparseable creation
// dates leave the age unset.
func parseWhois(data string, now time.Time) WhoisInfo {
	info := WhoisInfo{
		Registrar: firstMatch(whoisRegistrar, data),
		Created:   firstMatch(whoisCreated, data),
		Expires:   firstMatch(whoisExpires, data),
		Status:    firstMatch(whoisStatus, data),
	}

	if created, ok := parseWhoisDate(info.Created); ok {
		days := int(now.Sub(created).Hours() / 24)
		years := days / 365
		info.AgeDays = &days
		info.AgeYears = &years
	}
	return info
}

func firstMatch(re *regexp.Regexp, data string) string {
	if m := re.FindStringSubmatch(data); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func parseWhoisDate(value string) (time.Time, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	for _, layout := range whoisDateLayouts {
		if t, err := time.Parse(layout, fields[0]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
