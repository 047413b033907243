package seo

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seodesk/seodesk/scraper"
)

// maxAnchorText is the longest anchor text kept, in characters.
const maxAnchorText = 100

type linkSummary struct {
	internal []Link
	external []Link
}

// classifyLinks resolves every anchor against page and splits them by
// hostname, ignoring case. Empty, fragment-only and javascript: hrefs are ignored.
func classifyLinks(doc *goquery.Document, page *url.URL) linkSummary {
	summary := linkSummary{internal: []Link{}, external: []Link{}}
	host := strings.ToLower(page.Hostname())

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := page.ResolveReference(ref)

		link := Link{
			URL:        abs.String(),
			AnchorText: truncate(scraper.NormalizeText(s.Text()), maxAnchorText),
			Title:      strings.TrimSpace(s.AttrOr("title", "")),
			Domain:     strings.ToLower(abs.Hostname()),
		}

		if link.Domain == host {
			summary.internal = append(summary.internal, link)
		} else {
			summary.external = append(summary.external, link)
		}
	})

	return summary
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
