// Package newsfeed persists aggregated news in SQLite. Items are keyed by
// (url, source) so merging the same listing twice adds nothing.
package newsfeed

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for news operations
var (
	ErrNewsNotFound   = errors.New("news item not found")
	ErrSourceNotFound = errors.New("news source not found")
	ErrEmptySource    = errors.New("source name is empty")
)

// Source is a news source row. Sources are created on first use.
type Source struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// MergeError describes a failure to store a single news item.
type MergeError struct {
	URL string
	Err error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

// MergeResult contains the outcome of a Merge, including any per-item
// errors that occurred.
type MergeResult struct {
	// Added counts items that were not already stored.
	Added int
	// Total counts items offered to Merge.
	Total  int
	Errors []MergeError
}

// Filter represents filtering options for listing news.
type Filter struct {
	Source          string // Filter by source name
	IncludeArchived bool
	Limit           int // Pagination limit
	Offset          int // Pagination offset
}

// Store manages news items using SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a news store with the given database path.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the news tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news_sources (
		source_id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS news (
		news_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		source_id TEXT NOT NULL REFERENCES news_sources(source_id),
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL,
		published_ts INTEGER NOT NULL,
		is_featured INTEGER NOT NULL DEFAULT 0,
		is_archived INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (url, source_id)
	);

	CREATE INDEX IF NOT EXISTS idx_news_published ON news (published_ts DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSource returns the source with the given name, creating it with
// url https://<name> if it does not exist yet.
func (s *Store) EnsureSource(name string) (*Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptySource
	}

	source, err := s.getSource(name)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, ErrSourceNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	source = &Source{
		ID:        uuid.New(),
		Name:      name,
		URL:       "https://" + name,
		IsActive:  true,
		CreatedAt: now,
	}

	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO news_sources (source_id, name, url, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		source.ID.String(), source.Name, source.URL, formatTime(&now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert source: %w", err)
	}

	// Re-read so a concurrent insert of the same name resolves to one row.
	return s.getSource(name)
}

func (s *Store) getSource(name string) (*Source, error) {
	var idStr, url, createdAtStr string
	var active bool

	err := s.db.QueryRow(
		`SELECT source_id, url, is_active, created_at FROM news_sources WHERE name = ?`, name,
	).Scan(&idStr, &url, &active, &createdAtStr)
	if err == sql.ErrNoRows {
		return nil, ErrSourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query source: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source ID: %w", err)
	}

	return &Source{ID: id, Name: name, URL: url, IsActive: active, CreatedAt: parseTime(createdAtStr)}, nil
}

// ListSources returns all sources ordered by name.
func (s *Store) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT source_id, name, url, is_active, created_at FROM news_sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var idStr, name, url, createdAtStr string
		var active bool
		if err := rows.Scan(&idStr, &name, &url, &active, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse source ID: %w", err)
		}
		sources = append(sources, Source{ID: id, Name: name, URL: url, IsActive: active, CreatedAt: parseTime(createdAtStr)})
	}

	return sources, rows.Err()
}

// Merge stores items that are not already present for their source. Invalid
// or failing items are collected in the result's Errors slice rather than
// aborting the batch. A non-nil error return indicates a total failure.
func (s *Store) Merge(items []NewsItem) (*MergeResult, error) {
	result := &MergeResult{Total: len(items)}
	sourceIDs := make(map[string]uuid.UUID)

	insert, err := s.db.Prepare(`
		INSERT OR IGNORE INTO news (
			news_id, title, url, source_id, description, image_url,
			published_at, published_ts, is_featured, is_archived,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			result.Errors = append(result.Errors, MergeError{URL: item.URL, Err: err})
			continue
		}

		sourceID, ok := sourceIDs[item.Source]
		if !ok {
			source, err := s.EnsureSource(item.Source)
			if err != nil {
				result.Errors = append(result.Errors, MergeError{URL: item.URL, Err: err})
				continue
			}
			sourceID = source.ID
			sourceIDs[item.Source] = sourceID
		}

		now := s.now().UTC()
		published := item.PublishedAt.UTC()
		res, err := insert.Exec(
			uuid.New().String(),
			item.Title,
			item.URL,
			sourceID.String(),
			item.Description,
			item.ImageURL,
			formatTime(&published),
			published.Unix(),
			formatTime(&now),
			formatTime(&now),
		)
		if err != nil {
			result.Errors = append(result.Errors, MergeError{URL: item.URL, Err: fmt.Errorf("failed to insert news: %w", err)})
			continue
		}

		if n, err := res.RowsAffected(); err == nil && n > 0 {
			result.Added++
		}
	}

	return result, nil
}

// ArchiveOlderThan marks every non-archived item published before cutoff as
// archived and returns how many rows changed.
func (s *Store) ArchiveOlderThan(cutoff time.Time) (int, error) {
	now := s.now().UTC()
	res, err := s.db.Exec(
		`UPDATE news SET is_archived = 1, updated_at = ? WHERE is_archived = 0 AND published_ts < ?`,
		formatTime(&now), cutoff.UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive news: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

const selectNews = `
	SELECT n.news_id, n.title, n.url, s.name, n.description, n.image_url,
	       n.published_at, n.is_featured, n.is_archived, n.created_at, n.updated_at
	FROM news n
	JOIN news_sources s ON s.source_id = n.source_id
`

// List returns news ordered newest first.
func (s *Store) List(filter Filter) ([]NewsItem, error) {
	query := selectNews

	var whereClauses []string
	var args []any

	if filter.Source != "" {
		whereClauses = append(whereClauses, "s.name = ?")
		args = append(args, filter.Source)
	}
	if !filter.IncludeArchived {
		whereClauses = append(whereClauses, "n.is_archived = 0")
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY n.published_ts DESC, n.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	var items []NewsItem
	for rows.Next() {
		item, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// Get retrieves a news item by ID.
func (s *Store) Get(id uuid.UUID) (*NewsItem, error) {
	row := s.db.QueryRow(selectNews+" WHERE n.news_id = ?", id.String())
	item, err := scanNews(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNewsNotFound
	}
	return item, err
}

type scanner interface {
	Scan(dest ...any) error
}

// scanNews parses one row of selectNews into a NewsItem.
func scanNews(row scanner) (*NewsItem, error) {
	var idStr, publishedStr, createdStr, updatedStr string
	var item NewsItem

	err := row.Scan(
		&idStr, &item.Title, &item.URL, &item.Source, &item.Description, &item.ImageURL,
		&publishedStr, &item.IsFeatured, &item.IsArchived, &createdStr, &updatedStr,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan news: %w", err)
	}

	item.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse news ID: %w", err)
	}
	item.PublishedAt = parseTime(publishedStr)
	item.CreatedAt = parseTime(createdStr)
	item.UpdatedAt = parseTime(updatedStr)

	return &item, nil
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
