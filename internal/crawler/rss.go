package crawler

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const maxFeedBody = 5 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FeedFetcher downloads and parses RSS feeds.
type FeedFetcher struct {
	client HTTPClient
}

// NewFeedFetcher creates a FeedFetcher with the given HTTP client.
func NewFeedFetcher(client HTTPClient) *FeedFetcher {
	return &FeedFetcher{client: client}
}

// Fetch downloads and parses an RSS feed from the given URL.
func (f *FeedFetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "newsdesk/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// feedItemGUID returns the native identifier for an RSS item: the link,
// then the GUID, then a hash of title+link so identity is always stable.
func feedItemGUID(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if item.GUID != "" {
		return item.GUID
	}
	h := sha256.Sum256([]byte(item.Title + "|" + item.Link))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// feedItemContent picks the first non-empty body field and strips HTML.
func feedItemContent(item *gofeed.Item) string {
	for _, body := range []string{item.Description, item.Content} {
		if strings.TrimSpace(body) != "" {
			return stripHTML(body)
		}
	}
	return ""
}

func feedItemPublished(item *gofeed.Item, now time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return now
}

// stripHTML reduces feed markup to plain text. Unparseable input is
// returned as is rather than dropped.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}
