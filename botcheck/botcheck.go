// Package botcheck recognises anti-bot interstitials and block pages so
// they are not mistaken for real content.
package botcheck

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is what the rules inspect.
type Page struct {
	// Size is the raw response body length in bytes.
	Size int
	// Text is the lowercased text content of the document.
	Text string
	// HasTitle reports whether a <title> element is present.
	HasTitle bool
}

// NewPage builds a Page from a parsed document and the raw body size.
func NewPage(doc *goquery.Document, size int) Page {
	return Page{
		Size:     size,
		Text:     strings.ToLower(doc.Text()),
		HasTitle: doc.Find("title").Length() > 0,
	}
}

// Rule is one blocking signature.
type Rule struct {
	Name  string
	Match func(p Page) bool
}

// DefaultRules are the known signatures. Any match means blocked.
var DefaultRules = []Rule{
	{
		// Real pages are never this small.
		Name:  "tiny_body",
		Match: func(p Page) bool { return p.Size < 500 },
	},
	{
		// Beget hosting sets a cookie via script and reloads.
		Name: "beget_cookie_reload",
		Match: func(p Page) bool {
			return containsAll(p.Text, "beget", "set_cookie", "location.reload")
		},
	},
	{
		Name: "cloudflare_challenge",
		Match: func(p Page) bool {
			return containsAll(p.Text, "cloudflare", "checking your browser")
		},
	},
	{
		Name: "access_denied",
		Match: func(p Page) bool {
			return strings.Contains(p.Text, "access denied") || strings.Contains(p.Text, "forbidden")
		},
	},
	{
		// Small untitled page whose only job is to reload itself.
		Name: "untitled_reload",
		Match: func(p Page) bool {
			return p.Size < 1000 && strings.Contains(p.Text, "location.reload") && !p.HasTitle
		},
	},
}

// Detector evaluates a rule list.
type Detector struct {
	rules []Rule
}

// New creates a Detector. With no rules it uses DefaultRules.
func New(rules ...Rule) *Detector {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Detector{rules: rules}
}

// Check returns the name of the first matching rule, or "" and false.
func (d *Detector) Check(p Page) (string, bool) {
	for _, r := range d.rules {
		if r.Match(p) {
			return r.Name, true
		}
	}
	return "", false
}

// LooksBlocked reports whether doc looks like a block or challenge page.
func (d *Detector) LooksBlocked(doc *goquery.Document, size int) bool {
	_, blocked := d.Check(NewPage(doc, size))
	return blocked
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
