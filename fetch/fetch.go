// Package fetch issues browser-like GET requests and hands back either a
// parsed document or a typed Failure. It never retries; callers decide what
// to do with a failure.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Timeouts used by the two fetch profiles.
const (
	NewsTimeout = 10 * time.Second
	PageTimeout = 30 * time.Second
)

// DefaultUserAgent is sent unless a Config overrides it.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 20 * 1024 * 1024

// ErrBodyTooLarge is wrapped by the Failure returned for bodies over the cap.
var ErrBodyTooLarge = errors.New("response body too large")

// Config describes how a Client talks to remote hosts.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	// Headers are added to every request after User-Agent.
	Headers map[string]string
	// FollowRedirects lets net/http follow 3xx responses. Redirect tracing
	// turns it off so each hop is visible.
	FollowRedirects bool
	// MaxBodyBytes caps the response body; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// NewsConfig is the profile used for news listing pages.
func NewsConfig() Config {
	return Config{
		Timeout:         NewsTimeout,
		UserAgent:       DefaultUserAgent,
		FollowRedirects: true,
	}
}

// PageConfig is the profile used for SEO page analysis. Accept-Encoding is
// left to the transport so gzip responses are decoded transparently.
func PageConfig() Config {
	return Config{
		Timeout:   PageTimeout,
		UserAgent: DefaultUserAgent,
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language":           "ru-RU,ru;q=0.9,en;q=0.8",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Cache-Control":             "max-age=0",
		},
		FollowRedirects: true,
	}
}

// Response is the raw outcome of a request, whatever its status.
type Response struct {
	URL        string
	FinalURL   string
	StatusCode int
	// Status is the reason phrase, e.g. "Moved Permanently".
	Status  string
	Header  http.Header
	Body    []byte
	Elapsed time.Duration
}

// Size returns the body length in bytes.
func (r *Response) Size() int {
	return len(r.Body)
}

// Document is a successful response with its parsed markup.
type Document struct {
	*Response
	HTML *goquery.Document
}

// Client performs requests according to a Config. It is safe for concurrent
// use.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a Client. A zero Timeout means NewsTimeout and an empty
// UserAgent means DefaultUserAgent.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = NewsTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	if !config.FollowRedirects {
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Client{config: config, httpClient: httpClient}
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

// Do sends a GET request and returns the response for any HTTP status. Only
// transport problems produce an error, always a *Failure.
func (c *Client) Do(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Failure{Kind: KindOther, Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, classify(err)
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, &Failure{
			Kind:       KindOther,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%v: more than %d bytes", ErrBodyTooLarge, c.config.MaxBodyBytes),
			Err:        ErrBodyTooLarge,
		}
	}
	elapsed := time.Since(start)

	return &Response{
		URL:        rawURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Header:     resp.Header,
		Body:       body,
		Elapsed:    elapsed,
	}, nil
}

// Fetch sends a GET request and parses the body as HTML. Statuses of 400 and
// above become a Failure of KindHTTP.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	resp, err := c.Do(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Failure{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error: %d %s", resp.StatusCode, resp.Status),
		}
	}

	return Parse(resp)
}

// Parse decodes resp.Body into a Document, converting legacy charsets such
// as windows-1251 to UTF-8 first.
func Parse(resp *Response) (*Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(resp.Body), resp.Header.Get("Content-Type"))
	if err != nil {
		reader = bytes.NewReader(resp.Body)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, &Failure{Kind: KindOther, StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to parse HTML: %v", err), Err: err}
	}

	if base, err := url.Parse(resp.FinalURL); err == nil {
		doc.Url = base
	}

	return &Document{Response: resp, HTML: doc}, nil
}

// classify maps a transport error onto a Failure kind.
func classify(err error) *Failure {
	failure := &Failure{Kind: KindOther, Message: err.Error(), Err: err}

	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		failure.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		failure.Kind = KindTimeout
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		failure.Kind = KindConnection
	}

	return failure
}
