// Package discovery collects news from every configured source and syncs it
// into the news store.
package discovery

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/logger"
	"github.com/seodesk/seodesk/newsfeed"
	"github.com/seodesk/seodesk/sources"
	"golang.org/x/time/rate"
)

// DefaultDelay is the minimum spacing between two source requests.
const DefaultDelay = time.Second

// slowFetch is the duration above which a source fetch is logged at Warn.
const slowFetch = 5 * time.Second

// Fetcher retrieves and parses one listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Document, error)
}

// Config holds aggregator settings.
type Config struct {
	// Timeout bounds each source request. Zero means fetch.NewsTimeout.
	Timeout time.Duration
	// Delay spaces source requests. Zero means DefaultDelay; negative
	// disables spacing.
	Delay     time.Duration
	UserAgent string
}

// SourceReport summarizes one source's run.
type SourceReport struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
	// ItemErrors counts entries skipped because they could not be read.
	ItemErrors int `json:"item_errors"`
	// Error is set when the page could not be fetched at all.
	Error string `json:"error,omitempty"`
}

// AggregateResult holds the merged items of one run, newest first.
type AggregateResult struct {
	Items   []newsfeed.NewsItem `json:"items"`
	Total   int                 `json:"total"`
	Sources []SourceReport      `json:"sources"`
}

// Aggregator runs extractors one after another.
type Aggregator struct {
	extractors []sources.Extractor
	fetcher    Fetcher
	limiter    *rate.Limiter
	delay      time.Duration
	log        logger.Logger
}

// NewAggregator creates an Aggregator that runs extractors in the given
// order. A nil log discards output.
func NewAggregator(extractors []sources.Extractor, cfg Config, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}

	news := fetch.NewsConfig()
	if cfg.Timeout > 0 {
		news.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		news.UserAgent = cfg.UserAgent
	}

	delay := cfg.Delay
	if delay == 0 {
		delay = DefaultDelay
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Aggregator{
		extractors: extractors,
		fetcher:    fetch.NewClient(news),
		limiter:    rate.NewLimiter(limit, 1),
		delay:      delay,
		log:        log,
	}
}

// WithFetcher replaces the page fetcher and returns the aggregator.
func (a *Aggregator) WithFetcher(f Fetcher) *Aggregator {
	a.fetcher = f
	return a
}

// Aggregate fetches every source and returns their items sorted by
// publication date, newest first. Items with equal dates keep source
// order. A source that fails contributes nothing; the only error returned
// is ctx's.
func (a *Aggregator) Aggregate(ctx context.Context) (*AggregateResult, error) {
	result := &AggregateResult{
		Items:   []newsfeed.NewsItem{},
		Sources: make([]SourceReport, 0, len(a.extractors)),
	}

	for i, extractor := range a.extractors {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("aggregation interrupted: %w", err)
		}

		items, report := a.runSource(ctx, extractor)
		result.Items = append(result.Items, items...)
		result.Sources = append(result.Sources, report)

		if i < len(a.extractors)-1 {
			if err := a.pause(ctx); err != nil {
				return nil, fmt.Errorf("aggregation interrupted: %w", err)
			}
		}
	}

	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].PublishedAt.After(result.Items[j].PublishedAt)
	})
	result.Total = len(result.Items)

	a.log.Info("Aggregation finished",
		logger.Int("sources", len(result.Sources)),
		logger.Int("items", result.Total),
	)

	return result, nil
}

// pause waits out the delay after a source finishes, so slow sources are
// followed by a full gap as well.
func (a *Aggregator) pause(ctx context.Context) error {
	if a.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Aggregator) runSource(ctx context.Context, extractor sources.Extractor) ([]newsfeed.NewsItem, SourceReport) {
	report := SourceReport{Name: extractor.Name()}
	log := a.log.With(logger.Source(extractor.Name()), logger.URL(extractor.URL()))
	start := time.Now()

	base, err := url.Parse(extractor.URL())
	if err != nil {
		report.Error = fmt.Sprintf("invalid source url: %v", err)
		log.Warn("Skipping source", logger.Error(err))
		return nil, report
	}

	doc, err := a.fetcher.Fetch(ctx, extractor.URL())
	if err != nil {
		report.Error = err.Error()
		log.Warn("Failed to fetch source", logger.Error(err))
		return nil, report
	}

	extracted, err := safeExtract(extractor, doc, base)
	if err != nil {
		report.Error = err.Error()
		log.Error("Extractor failed", logger.Error(err))
		return nil, report
	}

	for _, itemErr := range extracted.Errors {
		log.Warn("Skipped item", logger.Error(itemErr))
	}
	report.Items = len(extracted.Items)
	report.ItemErrors = len(extracted.Errors)

	elapsed := time.Since(start)
	if elapsed > slowFetch {
		log.Warn("Slow source", logger.Int("items", report.Items), logger.Duration("elapsed", elapsed))
	} else {
		log.Info("Fetched source", logger.Int("items", report.Items), logger.Duration("elapsed", elapsed))
	}

	return extracted.Items, report
}

// safeExtract turns an extractor panic into an error so one broken page
// cannot stop the run.
func safeExtract(extractor sources.Extractor, doc *fetch.Document, base *url.URL) (result *sources.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor %s panicked: %v", extractor.Name(), r)
		}
	}()
	return extractor.Extract(doc, base), nil
}
