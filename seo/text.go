package seo

import (
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// chromeSelector matches layout elements that are not page content.
const chromeSelector = `header, footer, nav, aside, script, style, noscript, ` +
	`[class*="header"], [class*="footer"], [class*="nav"], [class*="menu"], [class*="sidebar"]`

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// visibleText returns the page's content text with navigation chrome
// removed. The text is taken from <main>, else <article>, else <body>,
// else the whole document. doc is not modified.
func visibleText(doc *goquery.Document) string {
	root := doc.Selection.Clone()
	root.Find(chromeSelector).Remove()

	source := root
	for _, sel := range []string{"main", "article", "body"} {
		if found := root.Find(sel).First(); found.Length() > 0 {
			source = found
			break
		}
	}

	var parts []string
	for _, n := range source.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// countWords counts word tokens in the lowercased text.
func countWords(text string) int {
	return len(wordPattern.FindAllStringIndex(strings.ToLower(text), -1))
}

// ParseKeywords splits newline-separated input into keywords, dropping
// blank lines.
func ParseKeywords(input string) []string {
	var keywords []string
	for _, line := range strings.Split(input, "\n") {
		if kw := strings.TrimSpace(line); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// keywordDensity counts case-insensitive occurrences of each keyword in
// text. Density is a percentage of wordCount, 0 when there are no words.
func keywordDensity(text string, wordCount int, keywords []string) map[string]KeywordStat {
	if len(keywords) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	stats := make(map[string]KeywordStat, len(keywords))
	for _, kw := range keywords {
		count := strings.Count(lower, strings.ToLower(kw))
		density := 0.0
		if wordCount > 0 {
			density = round2(float64(count) * 100 / float64(wordCount))
		}
		stats[kw] = KeywordStat{Count: count, Density: density}
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
