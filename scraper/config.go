package scraper

import "errors"

// Validate errors.
var (
	ErrNoItemSelector = errors.New("item_selector is required")
	ErrNoLinkSelector = errors.New("link_selector is required")
)

// ListConfig defines how to pull news entries out of a listing page. Every
// selector except ItemSelector is evaluated relative to one item node.
type ListConfig struct {
	ItemSelector string `json:"item_selector" yaml:"item_selector"`
	LinkSelector string `json:"link_selector" yaml:"link_selector"`

	// TitleSelector picks the title node. Empty means the link text.
	TitleSelector string `json:"title_selector,omitempty" yaml:"title_selector,omitempty"`

	// DateSelector picks the node carrying the publication date. Empty
	// means the page prints no dates and no freshness filter is applied.
	DateSelector string `json:"date_selector,omitempty" yaml:"date_selector,omitempty"`
	// DateAttr reads the date from an attribute (e.g. "datetime") instead
	// of the node text.
	DateAttr string `json:"date_attr,omitempty" yaml:"date_attr,omitempty"`

	ImageSelector string `json:"image_selector,omitempty" yaml:"image_selector,omitempty"`
}

// NewListConfig creates a list configuration whose title is the link text.
func NewListConfig(itemSelector, linkSelector string) *ListConfig {
	return &ListConfig{
		ItemSelector: itemSelector,
		LinkSelector: linkSelector,
	}
}

// Validate checks the configuration is usable.
func (c *ListConfig) Validate() error {
	if c.ItemSelector == "" {
		return ErrNoItemSelector
	}
	if c.LinkSelector == "" {
		return ErrNoLinkSelector
	}
	return nil
}

// HasDates reports whether entries carry a date to filter on.
func (c *ListConfig) HasDates() bool {
	return c.DateSelector != ""
}
