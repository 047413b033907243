package newsfeed

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// NewsItem is a single news entry. Extractors fill Title, URL, Source,
// PublishedAt and optionally Description and ImageURL; the Store assigns
// the identity and bookkeeping fields.
type NewsItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	IsFeatured  bool      `json:"is_featured"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the invariants every stored item must hold.
func (n *NewsItem) Validate() error {
	if n.Title == "" {
		return errors.New("title is empty")
	}
	if n.Source == "" {
		return errors.New("source is empty")
	}
	if n.URL == "" {
		return errors.New("url is empty")
	}

	u, err := url.Parse(n.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be absolute http or https: %s", n.URL)
	}

	return nil
}
