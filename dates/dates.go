// Package dates normalizes the date strings found on news listing pages:
// ISO timestamps, European day-first dates, Russian month names in the
// genitive case, and relative phrases such as "2 часа назад".
//
// Two entry points share one format table. Parse never fails and falls back
// to the current time; IsRecent falls back to false. Callers rely on both
// fallbacks, so neither may be turned into an error.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWindowDays is the freshness window used by the news sources.
const DefaultWindowDays = 7

// layout is one explicit format. UTC marks layouts whose trailing "Z" means
// the value is in UTC rather than the normalizer's location.
type layout struct {
	format string
	utc    bool
}

// layouts are tried in order. Single-digit days, months and hours are
// accepted, matching what the listing pages print.
var layouts = []layout{
	{format: "2006-01-02"},
	{format: "2.1.2006"},
	{format: "2.1.06"},
	{format: "2.1.2006 15:04"},
	{format: "2006-01-02T15:04:05.999999999Z", utc: true},
	{format: "2006-01-02T15:04:05Z", utc: true},
	{format: "2006-01-02 15:04:05"},
}

// ruMonths maps genitive Russian month names to month numbers.
var ruMonths = map[string]time.Month{
	"января":   time.January,
	"февраля":  time.February,
	"марта":    time.March,
	"апреля":   time.April,
	"мая":      time.May,
	"июня":     time.June,
	"июля":     time.July,
	"августа":  time.August,
	"сентября": time.September,
	"октября":  time.October,
	"ноября":   time.November,
	"декабря":  time.December,
}

// relativeTokens mark phrases like "сегодня", "3 часа назад" or
// "15 minutes ago". They are matched as substrings of the lowercased text.
var relativeTokens = []string{
	"сегодня", "час", "минут", "вчера",
	"today", "hour", "minute", "yesterday",
}

type matchKind int

const (
	matchNone matchKind = iota
	matchExact
	matchRelative
)

// Normalizer parses dates relative to a clock and a location.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Normalizer. A nil location means time.Local and a nil clock
// means time.Now.
func New(loc *time.Location, now func() time.Time) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now}
}

var defaultNormalizer = New(nil, nil)

// Parse converts text with the default normalizer. See Normalizer.Parse.
func Parse(text string) time.Time {
	return defaultNormalizer.Parse(text)
}

// IsRecent reports recency with the default normalizer. See
// Normalizer.IsRecent.
func IsRecent(text string, windowDays int) bool {
	return defaultNormalizer.IsRecent(text, windowDays)
}

// Now returns the normalizer's current time in its location.
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.loc)
}

// Parse converts text into a timestamp. Relative phrases and anything that
// cannot be parsed yield the current time; Parse never fails.
func (n *Normalizer) Parse(text string) time.Time {
	t, kind := n.match(text)
	if kind == matchExact {
		return t
	}
	return n.Now()
}

// IsRecent reports whether text names a day between today and windowDays
// days ago, inclusive. Future dates are not recent. Relative phrases are
// always recent; empty or unparseable text never is.
func (n *Normalizer) IsRecent(text string, windowDays int) bool {
	t, kind := n.match(text)
	switch kind {
	case matchExact:
		diff := DaysBetween(t, n.Now())
		return diff >= 0 && diff <= windowDays
	case matchRelative:
		return true
	default:
		return false
	}
}

// match runs the three tiers: explicit layouts, Russian month names,
// relative tokens.
func (n *Normalizer) match(text string) (time.Time, matchKind) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, matchNone
	}

	for _, l := range layouts {
		loc := n.loc
		if l.utc {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(l.format, trimmed, loc); err == nil {
			return t.In(n.loc), matchExact
		}
	}

	if t, ok := n.parseRussian(trimmed); ok {
		return t, matchExact
	}

	lower := strings.ToLower(trimmed)
	for _, token := range relativeTokens {
		if strings.Contains(lower, token) {
			return time.Time{}, matchRelative
		}
	}

	return time.Time{}, matchNone
}

// parseRussian handles "07 октября 2025" and "7 Октября, 2025".
func (n *Normalizer) parseRussian(text string) (time.Time, bool) {
	parts := strings.Fields(strings.ReplaceAll(text, ",", ""))
	if len(parts) != 3 {
		return time.Time{}, false
	}

	month, ok := ruMonths[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}

	rewritten := fmt.Sprintf("%s.%02d.%s", parts[0], int(month), parts[2])
	t, err := time.ParseInLocation("2.01.2006", rewritten, n.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween returns the number of calendar days from the date of from to
// the date of to, both taken in to's location.
func DaysBetween(from, to time.Time) int {
	from = from.In(to.Location())
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
