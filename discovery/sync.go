package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/seodesk/seodesk/logger"
	"github.com/seodesk/seodesk/newsfeed"
)

// DefaultArchiveDays is the archival threshold used when SyncOptions leaves
// it unset.
const DefaultArchiveDays = 30

// Store is the persistence side of a sync.
type Store interface {
	Merge(items []newsfeed.NewsItem) (*newsfeed.MergeResult, error)
	ArchiveOlderThan(cutoff time.Time) (int, error)
}

// SyncOptions controls a sync run.
type SyncOptions struct {
	// Cleanup archives stored items older than ArchiveDays.
	Cleanup     bool
	ArchiveDays int
}

// SyncResult reports what a sync run did.
type SyncResult struct {
	Total    int            `json:"total"`
	Added    int            `json:"added"`
	Archived int            `json:"archived"`
	Sources  []SourceReport `json:"sources"`
	Errors   []error        `json:"-"`
}

// Service runs the "parse all sources now" job.
type Service struct {
	aggregator *Aggregator
	store      Store
	now        func() time.Time
	log        logger.Logger
}

// NewService creates a sync service. A nil log discards output.
func NewService(aggregator *Aggregator, store Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		aggregator: aggregator,
		store:      store,
		now:        time.Now,
		log:        log,
	}
}

// Sync aggregates every source, stores items not seen before and, with
// Cleanup, archives stale ones. Re-running against unchanged sources adds
// nothing because the store deduplicates by (url, source).
func (s *Service) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	aggregated, err := s.aggregator.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	merged, err := s.store.Merge(aggregated.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to store news: %w", err)
	}

	result := &SyncResult{
		Total:   aggregated.Total,
		Added:   merged.Added,
		Sources: aggregated.Sources,
	}
	for i := range merged.Errors {
		s.log.Warn("Failed to store item", logger.URL(merged.Errors[i].URL), logger.Error(merged.Errors[i].Err))
		result.Errors = append(result.Errors, &merged.Errors[i])
	}

	if opts.Cleanup {
		days := opts.ArchiveDays
		if days <= 0 {
			days = DefaultArchiveDays
		}
		cutoff := s.now().AddDate(0, 0, -days)
		archived, err := s.store.ArchiveOlderThan(cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to archive news: %w", err)
		}
		result.Archived = archived
	}

	s.log.Info("Sync finished",
		logger.Int("total", result.Total),
		logger.Int("added", result.Added),
		logger.Int("archived", result.Archived),
		logger.Int("errors", len(result.Errors)),
	)

	return result, nil
}
