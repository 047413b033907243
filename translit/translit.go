// Package translit converts Cyrillic text and URL paths into Latin slugs.
package translit

import (
	"net/url"
	"regexp"
	"strings"
)

// table maps lowercase Cyrillic letters. Input is lowercased first, so no
// uppercase entries are needed.
var table = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	separators = regexp.MustCompile(`[\s\p{Z}_,]+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Pair is one input line and its transliteration.
type Pair struct {
	Original string `json:"original"`
	Translit string `json:"translit"`
}

// Transliterate lowercases text and replaces Cyrillic letters. Other
// characters pass through unchanged.
func Transliterate(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if latin, ok := table[r]; ok {
			b.WriteString(latin)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// slug transliterates s, turns separator runs into single hyphens and trims
// hyphens from both ends.
func slug(s string) string {
	s = Transliterate(s)
	s = separators.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugifyText percent-decodes text, slugs it and wraps the result in
// slashes: "Привет мир" becomes "/privet-mir/". Empty results stay empty.
func SlugifyText(text string) string {
	if decoded, err := url.PathUnescape(text); err == nil {
		text = decoded
	}
	s := slug(text)
	if s == "" {
		return ""
	}
	return "/" + s + "/"
}

// SlugifyURL slugs only the path of an absolute URL. Scheme and host are
// kept, and the query and fragment are copied verbatim. Input without a
// scheme and host is handled as text.
func SlugifyURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	rest := raw
	var fragment, query string
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		fragment, rest = rest[i+1:], rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		query, rest = rest[i+1:], rest[:i]
	}

	u, err := url.Parse(rest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return SlugifyText(raw)
	}

	result := u.Scheme + "://" + u.Host + slug(u.Path)
	if query != "" {
		result += "?" + query
	}
	if fragment != "" {
		result += "#" + fragment
	}
	return result
}

// SlugifyPath picks URL mode for absolute URLs and text mode otherwise.
func SlugifyPath(input string) string {
	if u, err := url.Parse(strings.TrimSpace(input)); err == nil && u.Scheme != "" && u.Host != "" {
		return SlugifyURL(input)
	}
	return SlugifyText(input)
}

// ProcessLines converts each non-blank line of text, in URL mode or text
// mode, and pairs it with its trimmed original.
func ProcessLines(text string, urlMode bool) []Pair {
	var pairs []Pair
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var converted string
		if urlMode {
			converted = SlugifyURL(line)
		} else {
			converted = SlugifyText(line)
		}
		pairs = append(pairs, Pair{Original: line, Translit: converted})
	}
	return pairs
}
