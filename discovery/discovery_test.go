package discovery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/seodesk/seodesk/dates"
	"github.com/seodesk/seodesk/fetch"
	"github.com/seodesk/seodesk/newsfeed"
	"github.com/seodesk/seodesk/scraper"
	"github.com/seodesk/seodesk/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)

const pageA = `<html><body>
<div class="item"><a href="/news/1">First story</a><span class="date">09.10.2025</span></div>
<div class="item"><a href="/news/2">Old story</a><span class="date">01.09.2025</span></div>
</body></html>`

const pageC = `<html><body>
<div class="item"><a href="https://other.example/x">Third story</a><span class="date">10.10.2025</span></div>
</body></html>`

// Test helper: serve two listing pages and one failing page
func newNewsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a":
			_, _ = w.Write([]byte(pageA))
		case "/c":
			_, _ = w.Write([]byte(pageC))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testOptions() sources.Options {
	return sources.Options{Dates: dates.New(time.UTC, func() time.Time { return fixedNow })}
}

// Test helper: build HTML sources pointing at the test server
func testExtractors(t *testing.T, srv *httptest.Server) []sources.Extractor {
	t.Helper()
	list := scraper.ListConfig{ItemSelector: "div.item", LinkSelector: "a", DateSelector: "span.date"}

	var extractors []sources.Extractor
	for _, name := range []string{"a", "b", "c"} {
		src, err := sources.NewHTMLSource("source-"+name, srv.URL+"/"+name, list, testOptions())
		require.NoError(t, err)
		extractors = append(extractors, src)
	}
	return extractors
}

func testAggregator(t *testing.T, srv *httptest.Server) *Aggregator {
	return NewAggregator(testExtractors(t, srv), Config{Delay: time.Millisecond}, nil)
}

// TestAggregate verifies ordering, per-source reports and failure isolation
func TestAggregate(t *testing.T) {
	srv := newNewsServer(t)

	result, err := testAggregator(t, srv).Aggregate(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, result.Total)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Third story", result.Items[0].Title)
	assert.Equal(t, "source-c", result.Items[0].Source)
	assert.Equal(t, "First story", result.Items[1].Title)
	assert.Equal(t, srv.URL+"/news/1", result.Items[1].URL)

	require.Len(t, result.Sources, 3)
	assert.Equal(t, SourceReport{Name: "source-a", Items: 1}, result.Sources[0])
	assert.Equal(t, "source-b", result.Sources[1].Name)
	assert.Contains(t, result.Sources[1].Error, "500")
	assert.Equal(t, SourceReport{Name: "source-c", Items: 1}, result.Sources[2])
}

// TestAggregate_StableOrder verifies equal dates keep source order
func TestAggregate_StableOrder(t *testing.T) {
	page := `<div class="item"><a href="/one">One</a><span class="date">09.10.2025</span></div>
<div class="item"><a href="/two">Two</a><span class="date">09.10.2025</span></div>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	list := scraper.ListConfig{ItemSelector: "div.item", LinkSelector: "a", DateSelector: "span.date"}
	src, err := sources.NewHTMLSource("s", srv.URL, list, testOptions())
	require.NoError(t, err)

	result, err := NewAggregator([]sources.Extractor{src}, Config{Delay: -1}, nil).Aggregate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "One", result.Items[0].Title)
	assert.Equal(t, "Two", result.Items[1].Title)
}

// TestAggregate_Cancelled verifies a cancelled context stops the run
func TestAggregate_Cancelled(t *testing.T) {
	srv := newNewsServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testAggregator(t, srv).Aggregate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type panicExtractor struct{ url string }

func (p panicExtractor) Name() string { return "broken" }
func (p panicExtractor) URL() string  { return p.url }
func (p panicExtractor) Extract(*fetch.Document, *url.URL) *sources.Result {
	panic("unexpected markup")
}

// TestAggregate_ExtractorPanic verifies a panicking extractor is isolated
func TestAggregate_ExtractorPanic(t *testing.T) {
	srv := newNewsServer(t)
	extractors := append([]sources.Extractor{panicExtractor{url: srv.URL + "/a"}}, testExtractors(t, srv)...)

	result, err := NewAggregator(extractors, Config{Delay: -1}, nil).Aggregate(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.Sources[0].Error, "panicked")
	assert.Equal(t, 2, result.Total)
}

// Test helper: create a sync service backed by a temporary store
func setupService(t *testing.T, srv *httptest.Server) (*Service, *newsfeed.Store) {
	t.Helper()
	store, err := newsfeed.NewStore(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service := NewService(testAggregator(t, srv), store, nil)
	service.now = func() time.Time { return fixedNow }
	return service, store
}

// TestSync_Idempotent verifies a second run over unchanged pages adds
// nothing
func TestSync_Idempotent(t *testing.T) {
	srv := newNewsServer(t)
	service, store := setupService(t, srv)

	first, err := service.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 2, first.Added)
	assert.Empty(t, first.Errors)

	second, err := service.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Total)
	assert.Equal(t, 0, second.Added)

	items, err := store.List(newsfeed.Filter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

// TestSync_Cleanup verifies stale items are archived
func TestSync_Cleanup(t *testing.T) {
	srv := newNewsServer(t)
	service, store := setupService(t, srv)

	_, err := store.Merge([]newsfeed.NewsItem{{
		Title:       "Ancient story",
		URL:         "https://old.example/1",
		Source:      "old",
		PublishedAt: fixedNow.AddDate(0, -3, 0),
	}})
	require.NoError(t, err)

	result, err := service.Sync(context.Background(), SyncOptions{Cleanup: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.Archived)

	active, err := store.List(newsfeed.Filter{})
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

// TestAggregate_DelayAfterSlowSource verifies the pause between sources is
// measured from when the previous source finished, not when it started
func TestAggregate_DelayAfterSlowSource(t *testing.T) {
	const delay = 100 * time.Millisecond

	var (
		mu        sync.Mutex
		requested = map[string]time.Time{}
		answered  = map[string]time.Time{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested[r.URL.Path] = time.Now()
		mu.Unlock()

		if r.URL.Path == "/a" {
			time.Sleep(2 * delay)
		}
		_, _ = w.Write([]byte(pageC))

		mu.Lock()
		answered[r.URL.Path] = time.Now()
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)

	agg := NewAggregator(testExtractors(t, srv), Config{Delay: delay}, nil)
	_, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requested, 3)
	assert.GreaterOrEqual(t, requested["/b"].Sub(answered["/a"]), delay)
	assert.GreaterOrEqual(t, requested["/c"].Sub(answered["/b"]), delay)
}

// TestAggregate_CancelDuringPause verifies cancellation interrupts the wait
// between sources
func TestAggregate_CancelDuringPause(t *testing.T) {
	srv := newNewsServer(t)
	agg := NewAggregator(testExtractors(t, srv), Config{Delay: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := agg.Aggregate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
