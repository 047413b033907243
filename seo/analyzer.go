// Package seo analyses a single page: meta tags, headings, social cards,
// links, text metrics, keyword density and a list of issues.
package seo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/seodesk/seodesk/botcheck"
	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/logger"
)

// BlockedMessage is the error text returned for bot-protected pages.
const BlockedMessage = "the site is protected against automated parsing; try another site or analyse it manually"

// SiteFilesTimeout bounds each robots.txt and sitemap.xml request.
const SiteFilesTimeout = 10 * time.Second

// Config holds analyzer settings.
type Config struct {
	// Timeout bounds the page request. Zero means fetch.PageTimeout.
	Timeout time.Duration
	// UserAgent overrides the default browser user agent.
	UserAgent string
}

// Analyzer fetches and analyses pages. It is safe for concurrent use.
type Analyzer struct {
	client     *fetch.Client
	siteClient *fetch.Client
	detector   *botcheck.Detector
	rules      []Rule
	log        logger.Logger
}

// New creates an Analyzer. A nil log discards output.
func New(cfg Config, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.NewNop()
	}

	page := fetch.PageConfig()
	if cfg.Timeout > 0 {
		page.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		page.UserAgent = cfg.UserAgent
	}

	site := page
	site.Timeout = SiteFilesTimeout

	return &Analyzer{
		client:     fetch.NewClient(page),
		siteClient: fetch.NewClient(site),
		detector:   botcheck.New(),
		log:        log,
	}
}

// WithRules replaces the issue rules and returns the analyzer.
func (a *Analyzer) WithRules(rules []Rule) *Analyzer {
	a.rules = rules
	return a
}

// Analyze fetches pageURL and extracts its SEO data. Failures are returned
// as an ErrorResult value; Analyze never returns a Go error.
func (a *Analyzer) Analyze(ctx context.Context, pageURL string, keywords []string) Result {
	log := a.log.With(logger.URL(pageURL))

	resp, err := a.client.Do(ctx, pageURL)
	if err != nil {
		failure := fetch.AsFailure(err)
		log.Warn("Page request failed", logger.Error(err))
		return Result{Error: &ErrorResult{
			Error: fmt.Sprintf("request failed: %s", failure.Message),
			Kind:  string(failure.Kind),
		}}
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn("Page returned non-200 status", logger.Int("status", resp.StatusCode))
		return Result{Error: &ErrorResult{
			Error:      fmt.Sprintf("HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Kind:       string(fetch.KindHTTP),
		}}
	}

	doc, err := fetch.Parse(resp)
	if err != nil {
		log.Warn("Page could not be parsed", logger.Error(err))
		return Result{Error: &ErrorResult{
			Error:      fmt.Sprintf("parse failed: %v", err),
			StatusCode: resp.StatusCode,
			PageSize:   resp.Size(),
			Kind:       string(fetch.KindOther),
		}}
	}

	if rule, blocked := a.detector.Check(botcheck.NewPage(doc.HTML, resp.Size())); blocked {
		log.Warn("Page looks bot-protected", logger.String("rule", rule), logger.Int("size", resp.Size()))
		return Result{Error: &ErrorResult{
			Error:      BlockedMessage,
			StatusCode: resp.StatusCode,
			PageSize:   resp.Size(),
			Kind:       "blocked",
		}}
	}

	page, err := Extract(doc.HTML, pageURL, keywords, a.rules)
	if err != nil {
		return Result{Error: &ErrorResult{Error: err.Error(), StatusCode: resp.StatusCode, PageSize: resp.Size(), Kind: string(fetch.KindOther)}}
	}
	page.StatusCode = resp.StatusCode
	page.ResponseTime = round2(resp.Elapsed.Seconds())
	page.PageSize = resp.Size()

	log.Info("Page analysed",
		logger.Int("words", page.WordCount),
		logger.Int("links", page.TotalLinkCount),
		logger.Int("issues", len(page.Issues)),
	)

	return Result{Page: page}
}

// Extract builds a Page from an already fetched document. Response
// metadata (status, timing, size) is left for the caller. A nil rule list
// means DefaultRules.
func Extract(doc *goquery.Document, pageURL string, keywords []string, rules []Rule) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	page := &Page{
		URL:          pageURL,
		Title:        extractTitle(doc),
		MetaRobots:   extractRobots(doc),
		CanonicalURL: extractCanonical(doc),
		Headings:     extractHeadings(doc),
		OpenGraph:    extractOpenGraph(doc),
		Twitter:      extractTwitter(doc),
	}
	page.MetaDescription, _ = metaByName(doc, "description")
	page.MetaKeywords, _ = metaByName(doc, "keywords")
	page.ImagesMissingAlt = countImagesMissingAlt(doc)

	page.TitleLength = utf8.RuneCountInString(page.Title)
	page.DescriptionLength = utf8.RuneCountInString(page.MetaDescription)

	page.Text = visibleText(doc)
	page.WordCount = countWords(page.Text)
	page.KeywordDensity = keywordDensity(page.Text, page.WordCount, keywords)

	links := classifyLinks(doc, base)
	page.InternalLinks = links.internal
	page.ExternalLinks = links.external
	page.InternalLinkCount = len(links.internal)
	page.ExternalLinkCount = len(links.external)
	page.TotalLinkCount = page.InternalLinkCount + page.ExternalLinkCount

	page.Issues = EvaluateIssues(page, rules)

	return page, nil
}
