package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/storage"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<item>
  <title>First story</title>
  <link>https://example.com/1</link>
  <description>&lt;p&gt;Body of the first story.&lt;/p&gt;</description>
  <pubDate>Sat, 31 May 2025 10:00:00 GMT</pubDate>
</item>
<item>
  <title>Second story</title>
  <link>https://example.com/2</link>
  <description>Body of the second story about bitcoin.</description>
</item>
<item>
  <title>Empty story</title>
  <link>https://example.com/3</link>
</item>
</channel>
</rss>`

const testScrapeJSON = `[
  {"postText": "A social post.", "url": "https://facebook.com/posts/1", "likes": 4},
  {"url": "https://facebook.com/posts/2"}
]`

// stubTransport answers every request for a URL prefix with a fixed body.
type stubTransport struct {
	responses map[string]string
	status    int
}

func (s *stubTransport) Do(req *http.Request) (*http.Response, error) {
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	for prefix, body := range s.responses {
		if strings.HasPrefix(req.URL.String(), prefix) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		}
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func newTestCrawler(t *testing.T, store storage.Storage, transport HTTPClient) *Crawler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := func() time.Time { return time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC) }
	return NewWithClients(
		store,
		NewFeedFetcher(transport),
		NewScrapeClient("https://scraper.example.com/run", transport),
		"token-a", "token-b",
		log, now,
	)
}

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	s, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCrawlerRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	sources := []model.Source{
		{Kind: model.SourceRSS, Name: "Feed", Endpoint: "https://example.com/rss", IsActive: true},
		{Kind: model.SourceSocialPage, Name: "Page", Endpoint: "https://facebook.com/page", IsActive: true},
		{Kind: model.SourceRSS, Name: "Disabled", Endpoint: "https://off.example.com/rss", IsActive: false},
	}
	for i := range sources {
		if err := store.CreateSource(ctx, &sources[i]); err != nil {
			t.Fatalf("create source: %v", err)
		}
	}

	transport := &stubTransport{responses: map[string]string{
		"https://example.com/rss":         testFeedXML,
		"https://scraper.example.com/run": testScrapeJSON,
	}}
	c := newTestCrawler(t, store, transport)

	res, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Sources != 2 {
		t.Errorf("expected 2 active sources, got %d", res.Sources)
	}
	// Two feed items with bodies plus one social post with text.
	if res.Inserted != 3 {
		t.Errorf("expected 3 inserted, got %d", res.Inserted)
	}
	if res.Errors != 0 {
		t.Errorf("expected no errors, got %d", res.Errors)
	}

	items, err := store.ListRecentRawItems(ctx, 10)
	if err != nil {
		t.Fatalf("list raw items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 stored items, got %d", len(items))
	}
	for _, item := range items {
		if item.SourceName == "" {
			t.Errorf("item %q has no source name", item.NativeID)
		}
		if strings.Contains(item.Content, "<p>") {
			t.Errorf("item %q kept HTML markup: %q", item.NativeID, item.Content)
		}
	}
}

func TestCrawlerRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := model.Source{Kind: model.SourceRSS, Name: "Feed", Endpoint: "https://example.com/rss", IsActive: true}
	if err := store.CreateSource(ctx, &src); err != nil {
		t.Fatalf("create source: %v", err)
	}

	transport := &stubTransport{responses: map[string]string{
		"https://example.com/rss": testFeedXML,
	}}
	c := newTestCrawler(t, store, transport)

	first, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Inserted != 2 {
		t.Fatalf("expected 2 inserted on first run, got %d", first.Inserted)
	}

	second, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Inserted != 0 {
		t.Errorf("expected 0 inserted on second run, got %d", second.Inserted)
	}
	if second.Skipped != 2 {
		t.Errorf("expected 2 skipped on second run, got %d", second.Skipped)
	}
}

func TestCrawlerAppliesFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	src := model.Source{Kind: model.SourceRSS, Name: "Feed", Endpoint: "https://example.com/rss", IsActive: true}
	if err := store.CreateSource(ctx, &src); err != nil {
		t.Fatalf("create source: %v", err)
	}
	f := model.Filter{SourceID: src.ID, Kind: model.FilterExclude, Scope: model.ScopeContent, Value: "bitcoin"}
	if err := store.CreateFilter(ctx, &f); err != nil {
		t.Fatalf("create filter: %v", err)
	}

	transport := &stubTransport{responses: map[string]string{
		"https://example.com/rss": testFeedXML,
	}}
	c := newTestCrawler(t, store, transport)

	res, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("expected the bitcoin story filtered out, got %d inserted", res.Inserted)
	}
}

func TestCrawlerCountsSourceErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	sources := []model.Source{
		{Kind: model.SourceRSS, Name: "Broken", Endpoint: "https://broken.example.com/rss", IsActive: true},
		{Kind: model.SourceRSS, Name: "Feed", Endpoint: "https://example.com/rss", IsActive: true},
	}
	for i := range sources {
		if err := store.CreateSource(ctx, &sources[i]); err != nil {
			t.Fatalf("create source: %v", err)
		}
	}

	transport := &stubTransport{responses: map[string]string{
		"https://example.com/rss": testFeedXML,
	}}
	c := newTestCrawler(t, store, transport)

	res, err := c.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Errors != 1 {
		t.Errorf("expected 1 source error, got %d", res.Errors)
	}
	if res.Inserted != 2 {
		t.Errorf("healthy source must still be crawled, got %d inserted", res.Inserted)
	}
}
