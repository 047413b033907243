// Package sources holds the news extractors. Each extractor knows one
// listing page and turns its fetched document into news items.
package sources

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/seodesk/seodesk/dates"
	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/newsfeed"
	"github.com/seodesk/seodesk/scraper"
)

// Custom errors for source operations
var (
	ErrInvalidSourceURL = errors.New("source url must be absolute http or https")
	ErrEmptySourceName  = errors.New("source name is empty")
)

// Extractor turns one fetched listing page into news items.
type Extractor interface {
	// Name is the stable source identifier stored with every item.
	Name() string
	// URL is the listing page to fetch.
	URL() string
	// Extract reads doc, resolving relative links against base.
	Extract(doc *fetch.Document, base *url.URL) *Result
}

// Result contains extracted items and any per-item errors.
type Result struct {
	Items  []newsfeed.NewsItem
	Errors []error
}

// Options are shared by every extractor.
type Options struct {
	// Dates parses and filters item dates. Nil means the default
	// normalizer.
	Dates *dates.Normalizer
	// WindowDays is the freshness window. Zero or negative means
	// dates.DefaultWindowDays.
	WindowDays int
}

func (o Options) normalizer() *dates.Normalizer {
	if o.Dates == nil {
		return dates.New(nil, nil)
	}
	return o.Dates
}

func (o Options) window() int {
	if o.WindowDays <= 0 {
		return dates.DefaultWindowDays
	}
	return o.WindowDays
}

// TitleFunc rewrites an entry's title. It may read extra fields from the
// entry's node.
type TitleFunc func(entry scraper.Entry) string

// HTMLSource extracts items from an HTML listing page with CSS selectors.
// Sources whose config has a date selector drop items outside the
// freshness window; sources without one date every item at today's
// midnight.
type HTMLSource struct {
	name    string
	url     string
	list    scraper.ListConfig
	titleFn TitleFunc
	dates   *dates.Normalizer
	window  int
}

// NewHTMLSource creates an HTML source.
func NewHTMLSource(name, listURL string, list scraper.ListConfig, opts Options) (*HTMLSource, error) {
	if name == "" {
		return nil, ErrEmptySourceName
	}
	if err := validateURL(listURL); err != nil {
		return nil, err
	}
	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("invalid list config for %s: %w", name, err)
	}

	return &HTMLSource{
		name:   name,
		url:    listURL,
		list:   list,
		dates:  opts.normalizer(),
		window: opts.window(),
	}, nil
}

// WithTitle sets a title rewrite and returns the source.
func (s *HTMLSource) WithTitle(fn TitleFunc) *HTMLSource {
	s.titleFn = fn
	return s
}

func (s *HTMLSource) Name() string { return s.name }
func (s *HTMLSource) URL() string  { return s.url }

// Extract implements Extractor.
func (s *HTMLSource) Extract(doc *fetch.Document, base *url.URL) *Result {
	keep := func(text string) bool {
		return s.dates.IsRecent(text, s.window)
	}

	list := scraper.ExtractList(doc.HTML, base, s.list, keep)

	result := &Result{}
	for _, itemErr := range list.Errors {
		result.Errors = append(result.Errors, itemErr)
	}

	today := startOfDay(s.dates.Now())
	for _, entry := range list.Entries {
		title := entry.Title
		if s.titleFn != nil {
			title = s.titleFn(entry)
		}

		published := today
		if s.list.HasDates() {
			published = s.dates.Parse(entry.DateText)
		}

		result.Items = append(result.Items, newsfeed.NewsItem{
			Title:       title,
			URL:         entry.URL,
			Source:      s.name,
			ImageURL:    entry.ImageURL,
			PublishedAt: published,
		})
	}

	return result
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSourceURL, raw)
	}
	return nil
}
