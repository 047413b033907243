package seo

import "fmt"

// Length limits used by the meta rules, in characters.
const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 160
)

// Rule inspects a page and returns an issue, or nil.
type Rule func(p *Page) *Issue

// DefaultRules are evaluated independently; every rule that fires adds an
// issue, in this order.
var DefaultRules = []Rule{
	missingTitle,
	missingDescription,
	longTitle,
	longDescription,
	missingH1,
	multipleH1,
	imagesMissingAlt,
}

// EvaluateIssues runs rules against p. A nil rule list means DefaultRules.
func EvaluateIssues(p *Page, rules []Rule) []Issue {
	if rules == nil {
		rules = DefaultRules
	}
	issues := []Issue{}
	for _, rule := range rules {
		if issue := rule(p); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues
}

func missingTitle(p *Page) *Issue {
	if p.Title != "" {
		return nil
	}
	return &Issue{
		Category:       CategoryMeta,
		Severity:       SeverityCritical,
		Title:          "Missing title",
		Description:    "The page has no title tag",
		Recommendation: "Add a unique, descriptive title to every page",
	}
}

func missingDescription(p *Page) *Issue {
	if p.MetaDescription != "" {
		return nil
	}
	return &Issue{
		Category:       CategoryMeta,
		Severity:       SeverityHigh,
		Title:          "Missing meta description",
		Description:    "The page has no meta description",
		Recommendation: "Add a meta description of 150-160 characters",
	}
}

func longTitle(p *Page) *Issue {
	if p.TitleLength <= MaxTitleLength {
		return nil
	}
	return &Issue{
		Category:       CategoryMeta,
		Severity:       SeverityMedium,
		Title:          "Title too long",
		Description:    fmt.Sprintf("The title is %d characters long", p.TitleLength),
		Recommendation: "Shorten the title to 50-60 characters",
	}
}

func longDescription(p *Page) *Issue {
	if p.DescriptionLength <= MaxDescriptionLength {
		return nil
	}
	return &Issue{
		Category:       CategoryMeta,
		Severity:       SeverityMedium,
		Title:          "Meta description too long",
		Description:    fmt.Sprintf("The meta description is %d characters long", p.DescriptionLength),
		Recommendation: "Shorten the meta description to 150-160 characters",
	}
}

func missingH1(p *Page) *Issue {
	if len(p.Headings.H1) > 0 {
		return nil
	}
	return &Issue{
		Category:       CategoryStructure,
		Severity:       SeverityHigh,
		Title:          "Missing H1",
		Description:    "The page has no H1 heading",
		Recommendation: "Add a single H1 heading to the page",
	}
}

func multipleH1(p *Page) *Issue {
	if len(p.Headings.H1) <= 1 {
		return nil
	}
	return &Issue{
		Category:       CategoryStructure,
		Severity:       SeverityMedium,
		Title:          "Multiple H1",
		Description:    fmt.Sprintf("Found %d H1 headings", len(p.Headings.H1)),
		Recommendation: "Use only one H1 heading per page",
	}
}

func imagesMissingAlt(p *Page) *Issue {
	if p.ImagesMissingAlt == 0 {
		return nil
	}
	return &Issue{
		Category:       CategoryContent,
		Severity:       SeverityMedium,
		Title:          "Images without alt text",
		Description:    fmt.Sprintf("Found %d images with an empty alt attribute", p.ImagesMissingAlt),
		Recommendation: "Add descriptive alt text to every image",
	}
}
