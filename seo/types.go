package seo

// Category groups issues.
type Category string

// Issue categories.
const (
	CategoryMeta        Category = "meta"
	CategoryContent     Category = "content"
	CategoryTechnical   Category = "technical"
	CategoryStructure   Category = "structure"
	CategoryPerformance Category = "performance"
)

// Severity ranks issues.
type Severity string

// Issue severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Issue is one finding about a page.
type Issue struct {
	Category       Category `json:"category"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
}

// Headings holds heading texts per level in document order.
type Headings struct {
	H1 []string `json:"h1"`
	H2 []string `json:"h2"`
	H3 []string `json:"h3"`
	H4 []string `json:"h4"`
	H5 []string `json:"h5"`
	H6 []string `json:"h6"`
}

// Level returns the headings for level 1 to 6, nil otherwise.
func (h *Headings) Level(n int) []string {
	switch n {
	case 1:
		return h.H1
	case 2:
		return h.H2
	case 3:
		return h.H3
	case 4:
		return h.H4
	case 5:
		return h.H5
	case 6:
		return h.H6
	}
	return nil
}

func (h *Headings) set(n int, texts []string) {
	switch n {
	case 1:
		h.H1 = texts
	case 2:
		h.H2 = texts
	case 3:
		h.H3 = texts
	case 4:
		h.H4 = texts
	case 5:
		h.H5 = texts
	case 6:
		h.H6 = texts
	}
}

// Total returns the number of headings across all levels.
func (h *Headings) Total() int {
	n := 0
	for level := 1; level <= 6; level++ {
		n += len(h.Level(level))
	}
	return n
}

// OpenGraph holds og:* properties.
type OpenGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Type        string `json:"type"`
}

// TwitterCard holds twitter:* properties.
type TwitterCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Card        string `json:"card"`
}

// Link is one outgoing anchor.
type Link struct {
	URL        string `json:"url"`
	AnchorText string `json:"anchor_text"`
	Title      string `json:"title"`
	Domain     string `json:"domain"`
}

// KeywordStat is the occurrence count and density of one keyword.
type KeywordStat struct {
	Count   int     `json:"count"`
	Density float64 `json:"density"`
}

// Page is a successful extraction.
type Page struct {
	URL          string  `json:"page_url"`
	StatusCode   int     `json:"status_code"`
	ResponseTime float64 `json:"response_time"`
	PageSize     int     `json:"page_size"`

	Title           string `json:"title"`
	MetaDescription string `json:"meta_description"`
	MetaKeywords    string `json:"meta_keywords"`
	MetaRobots      string `json:"meta_robots"`
	CanonicalURL    string `json:"canonical_url"`

	Headings  Headings    `json:"headings"`
	OpenGraph OpenGraph   `json:"open_graph"`
	Twitter   TwitterCard `json:"twitter"`

	WordCount         int `json:"word_count"`
	TitleLength       int `json:"title_length"`
	DescriptionLength int `json:"description_length"`
	ImagesMissingAlt  int `json:"images_missing_alt"`

	InternalLinkCount int    `json:"internal_links"`
	ExternalLinkCount int    `json:"external_links"`
	TotalLinkCount    int    `json:"total_links"`
	InternalLinks     []Link `json:"internal_links_details"`
	ExternalLinks     []Link `json:"external_links_details"`

	Text           string                 `json:"extracted_text"`
	KeywordDensity map[string]KeywordStat `json:"keyword_density,omitempty"`

	Issues []Issue `json:"seo_issues"`
}

// ErrorResult is returned instead of a Page when a page cannot be analysed.
// StatusCode and PageSize are set when a response was received.
type ErrorResult struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
	// Kind is the fetch failure kind or "blocked".
	Kind string `json:"kind,omitempty"`
}

// Result holds exactly one of Page or Error.
type Result struct {
	Page  *Page        `json:"page,omitempty"`
	Error *ErrorResult `json:"error,omitempty"`
}

// OK reports whether the analysis succeeded.
func (r Result) OK() bool {
	return r.Page != nil
}
