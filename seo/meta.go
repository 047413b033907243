package seo

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var robotsNames = []string{"robots", "ROBOTS", "Robots"}

// robotsValues are directive strings recognised on any meta tag when no
// robots-named tag exists.
var robotsValues = map[string]bool{
	"index, follow":     true,
	"noindex, nofollow": true,
	"index, nofollow":   true,
	"noindex, follow":   true,
	"index,follow":      true,
	"noindex,nofollow":  true,
	"all":               true,
	"none":              true,
}

var robotsHints = []string{"robots", "index", "follow"}

func extractTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// metaByName returns the content of the first <meta name=...> with exactly
// that name.
func metaByName(doc *goquery.Document, name string) (string, bool) {
	sel := doc.Find(fmt.Sprintf(`meta[name=%q]`, name)).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.AttrOr("content", "")), true
}

func metaByProperty(doc *goquery.Document, property string) string {
	return strings.TrimSpace(doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().AttrOr("content", ""))
}

// extractRobots degrades through three searches: robots-named tags, tags
// carrying a known directive value, then tags whose content mentions
// robots, index or follow.
func extractRobots(doc *goquery.Document) string {
	for _, name := range robotsNames {
		if content, ok := metaByName(doc, name); ok {
			return content
		}
	}

	metas := doc.Find("meta[content]")

	var found string
	metas.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if robotsValues[strings.ToLower(content)] {
			found = content
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	metas.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := strings.TrimSpace(s.AttrOr("content", ""))
		lower := strings.ToLower(content)
		for _, hint := range robotsHints {
			if strings.Contains(lower, hint) {
				found = content
				return false
			}
		}
		return true
	})

	return found
}

func extractHeadings(doc *goquery.Document) Headings {
	var h Headings
	for level := 1; level <= 6; level++ {
		texts := []string{}
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, s *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(s.Text()))
		})
		h.set(level, texts)
	}
	return h
}

func extractOpenGraph(doc *goquery.Document) OpenGraph {
	return OpenGraph{
		Title:       metaByProperty(doc, "og:title"),
		Description: metaByProperty(doc, "og:description"),
		Image:       metaByProperty(doc, "og:image"),
		Type:        metaByProperty(doc, "og:type"),
	}
}

func extractTwitter(doc *goquery.Document) TwitterCard {
	get := func(name string) string {
		content, _ := metaByName(doc, name)
		return content
	}
	return TwitterCard{
		Title:       get("twitter:title"),
		Description: get("twitter:description"),
		Image:       get("twitter:image"),
		Card:        get("twitter:card"),
	}
}

func extractCanonical(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find(`link[rel~="canonical"]`).First().AttrOr("href", ""))
}

// countImagesMissingAlt counts images whose alt attribute is present but
// blank. Images with no alt attribute at all are not counted.
func countImagesMissingAlt(doc *goquery.Document) int {
	n := 0
	doc.Find("img[alt]").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.AttrOr("alt", "")) == "" {
			n++
		}
	})
	return n
}
