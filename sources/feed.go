package sources

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/seodesk/seodesk/dates"
	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/newsfeed"
	"github.com/seodesk/seodesk/scraper"
)

// maxDescription is the longest description kept from a feed item, in
// runes.
const maxDescription = 500

// FeedConfig names an RSS or Atom feed to aggregate.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// FeedSource extracts items from an RSS or Atom feed. The gofeed parser
// detects the format, so both are handled the same way.
type FeedSource struct {
	name   string
	url    string
	dates  *dates.Normalizer
	window int
}

// NewFeedSource creates a feed source.
func NewFeedSource(cfg FeedConfig, opts Options) (*FeedSource, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, ErrEmptySourceName
	}
	if err := validateURL(cfg.URL); err != nil {
		return nil, err
	}
	return &FeedSource{
		name:   strings.TrimSpace(cfg.Name),
		url:    cfg.URL,
		dates:  opts.normalizer(),
		window: opts.window(),
	}, nil
}

func (s *FeedSource) Name() string { return s.name }
func (s *FeedSource) URL() string  { return s.url }

// Extract implements Extractor. Items without a title, link or date, and
// items outside the freshness window, are dropped.
func (s *FeedSource) Extract(doc *fetch.Document, base *url.URL) *Result {
	result := &Result{}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(doc.Body))
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to parse feed: %w", err))
		return result
	}

	now := s.dates.Now()
	for i, item := range feed.Items {
		published := itemTime(item)
		if published == nil {
			continue
		}
		diff := dates.DaysBetween(*published, now)
		if diff < 0 || diff > s.window {
			continue
		}

		title := scraper.NormalizeText(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		resolved, err := scraper.ResolveURL(base, link)
		if err != nil {
			result.Errors = append(result.Errors, scraper.ItemError{Index: i, Err: fmt.Errorf("failed to resolve link: %w", err)})
			continue
		}

		result.Items = append(result.Items, newsfeed.NewsItem{
			Title:       title,
			URL:         resolved,
			Source:      s.name,
			Description: plainText(item.Description),
			ImageURL:    itemImage(item),
			PublishedAt: published.In(now.Location()),
		})
	}

	return result
}

// itemTime prefers the published date and falls back to the updated date.
func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

// plainText strips markup from a feed description and truncates it.
func plainText(description string) string {
	if description == "" {
		return ""
	}

	text := description
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
		text = doc.Text()
	}
	text = scraper.NormalizeText(text)

	runes := []rune(text)
	if len(runes) > maxDescription {
		return string(runes[:maxDescription]) + "..."
	}
	return text
}

// FromConfig returns the built-in sources followed by one FeedSource per
// configured feed.
func FromConfig(feeds []FeedConfig, opts Options) ([]Extractor, error) {
	extractors := Default(opts)
	for _, cfg := range feeds {
		source, err := NewFeedSource(cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid feed %q: %w", cfg.Name, err)
		}
		extractors = append(extractors, source)
	}
	return extractors, nil
}
