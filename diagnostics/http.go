package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/logger"
)

// MaxRedirects bounds how many hops the HTTP probe follows.
const MaxRedirects = 20

// ErrTooManyRedirects is reported when a chain exceeds MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// Redirect is one hop of a redirect chain. To is the raw Location header.
type Redirect struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

// HTTPResult is the outcome of the HTTP probe.
type HTTPResult struct {
	Status      string            `json:"status"`
	FinalURL    string            `json:"final_url,omitempty"`
	FinalStatus int               `json:"final_status,omitempty"`
	FinalReason string            `json:"final_reason,omitempty"`
	Redirects   []Redirect        `json:"redirects"`
	Headers     map[string]string `json:"headers,omitempty"`
	// ResponseTime is the last response's latency in seconds.
	ResponseTime float64 `json:"response_time"`
	Error        string  `json:"error,omitempty"`
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// HTTP requests target without automatic redirects and walks the chain hop
// by hop until a non-redirect status, a missing Location or MaxRedirects.
func (p *Prober) HTTP(ctx context.Context, target string) HTTPResult {
	current := withScheme(target)
	result := HTTPResult{Redirects: []Redirect{}}

	resp, err := p.client.Do(ctx, current)
	for err == nil && isRedirect(resp.StatusCode) {
		location := resp.Header.Get("Location")
		result.Redirects = append(result.Redirects, Redirect{
			From:   current,
			To:     location,
			Status: resp.StatusCode,
			Reason: resp.Status,
		})
		if location == "" {
			break
		}
		if len(result.Redirects) >= MaxRedirects {
			result.Status = StatusError
			result.Error = fmt.Sprintf("%v: stopped after %d hops", ErrTooManyRedirects, MaxRedirects)
			p.log.Warn("HTTP probe hit redirect limit", logger.URL(target))
			return result
		}

		next, perr := resolveLocation(current, location)
		if perr != nil {
			result.Status = StatusError
			result.Error = fmt.Sprintf("invalid redirect location %q: %v", location, perr)
			return result
		}
		current = next
		resp, err = p.client.Do(ctx, current)
	}

	if err != nil {
		failure := fetch.AsFailure(err)
		switch failure.Kind {
		case fetch.KindTimeout:
			result.Status = StatusTimeout
			result.Error = "request timeout"
		case fetch.KindConnection:
			result.Status = StatusConnectionError
			result.Error = "connection failed"
		default:
			result.Status = StatusError
			result.Error = failure.Message
		}
		p.log.Warn("HTTP probe failed", logger.URL(current), logger.Error(err))
		return result
	}

	result.Status = StatusSuccess
	result.FinalURL = current
	result.FinalStatus = resp.StatusCode
	result.FinalReason = resp.Status
	result.ResponseTime = resp.Elapsed.Seconds()
	result.Headers = make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		result.Headers[key] = strings.Join(values, ", ")
	}
	return result
}

func resolveLocation(current, location string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
