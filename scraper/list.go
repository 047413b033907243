package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Entry is one item pulled from a listing page before it becomes a news
// item.
type Entry struct {
	Title    string
	URL      string
	ImageURL string
	// DateText is the raw date text or attribute value, empty when the
	// config has no date selector.
	DateText string
	// Node is the item node, for callers that read extra fields.
	Node *goquery.Selection
}

// ItemError describes a failure to extract a single item.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// KeepFunc decides whether an entry with the given date text is kept.
type KeepFunc func(dateText string) bool

// ListResult contains the extracted entries and any per-item errors.
type ListResult struct {
	Entries []Entry
	Errors  []ItemError
	// Skipped counts items dropped by the date filter or for a missing
	// link or title.
	Skipped int
}

// ExtractList applies config to doc. Relative links and images are resolved
// against base. When config has a date selector, items whose date text is
// rejected by keep are dropped before anything else is read. A nil keep
// keeps everything.
func ExtractList(doc *goquery.Document, base *url.URL, config ListConfig, keep KeepFunc) *ListResult {
	result := &ListResult{}

	doc.Find(config.ItemSelector).Each(func(i int, item *goquery.Selection) {
		entry, ok, err := extractEntry(item, base, config, keep)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Index: i, Err: err})
			return
		}
		if !ok {
			result.Skipped++
			return
		}
		result.Entries = append(result.Entries, entry)
	})

	return result
}

func extractEntry(item *goquery.Selection, base *url.URL, config ListConfig, keep KeepFunc) (Entry, bool, error) {
	entry := Entry{Node: item}

	if config.HasDates() {
		entry.DateText = dateText(item, config)
		if keep != nil && !keep(entry.DateText) {
			return entry, false, nil
		}
	}

	link := item.Find(config.LinkSelector).First()
	if link.Length() == 0 {
		return entry, false, nil
	}

	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return entry, false, nil
	}
	resolved, err := ResolveURL(base, href)
	if err != nil {
		return entry, false, fmt.Errorf("failed to resolve link: %w", err)
	}
	entry.URL = resolved

	if config.TitleSelector == "" {
		entry.Title = NormalizeText(link.Text())
	} else {
		entry.Title = NormalizeText(item.Find(config.TitleSelector).First().Text())
	}
	if entry.Title == "" {
		return entry, false, nil
	}

	if config.ImageSelector != "" {
		src := strings.TrimSpace(item.Find(config.ImageSelector).First().AttrOr("src", ""))
		if src != "" {
			if img, err := ResolveURL(base, src); err == nil {
				entry.ImageURL = img
			}
		}
	}

	return entry, true, nil
}

func dateText(item *goquery.Selection, config ListConfig) string {
	node := item.Find(config.DateSelector).First()
	if config.DateAttr != "" {
		return strings.TrimSpace(node.AttrOr(config.DateAttr, ""))
	}
	return NormalizeText(node.Text())
}

// ResolveURL makes href absolute against base. Protocol-relative and
// root-relative forms are both handled.
func ResolveURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	if base == nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}

// NormalizeText collapses runs of whitespace and trims the result.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
