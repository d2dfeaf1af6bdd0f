// Package crawler implements the ingestion stage: it pulls recent items from
// every active tracked source, deduplicates them against stored history, and
// persists new raw items with whatever engagement metadata they carry.
package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/filter"
	"newsdesk/internal/model"
	"newsdesk/internal/storage"
)

const rssBatchLimit = 10

var errMissingToken = errors.New("no scraper credential configured")

// Result reports one ingestion run.
type Result struct {
	Sources  int `json:"sources"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Crawler is the ingestion stage.
type Crawler struct {
	store   storage.Storage
	feeds   *FeedFetcher
	scraper *ScrapeClient
	tokenA  string
	tokenB  string
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Crawler using the default HTTP client.
func New(store storage.Storage, scraperEndpoint, tokenA, tokenB string, log *slog.Logger) *Crawler {
	return &Crawler{
		store:   store,
		feeds:   NewFeedFetcher(http.DefaultClient),
		scraper: NewScrapeClient(scraperEndpoint, http.DefaultClient),
		tokenA:  tokenA,
		tokenB:  tokenB,
		log:     log,
		now:     time.Now,
	}
}

// NewWithClients creates a Crawler with injected collaborators (used in tests).
func NewWithClients(store storage.Storage, feeds *FeedFetcher, scraper *ScrapeClient, tokenA, tokenB string, log *slog.Logger, now func() time.Time) *Crawler {
	return &Crawler{
		store:   store,
		feeds:   feeds,
		scraper: scraper,
		tokenA:  tokenA,
		tokenB:  tokenB,
		log:     log,
		now:     now,
	}
}

// Run pulls every active source once. Per-source failures are counted and
// never abort the other sources.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	sources, err := c.store.ListActiveSources(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Sources: len(sources)}
	for _, src := range sources {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		c.processSource(ctx, src, res)
	}

	c.log.Info("crawl finished", "sources", res.Sources,
		"inserted", res.Inserted, "skipped", res.Skipped, "errors", res.Errors)
	return res, nil
}

func (c *Crawler) processSource(ctx context.Context, src model.Source, res *Result) {
	c.log.Debug("crawling source", "source_id", src.ID, "name", src.Name, "kind", src.Kind)

	var candidates []model.RawItem
	var err error
	switch src.Kind {
	case model.SourceRSS:
		candidates, err = c.fetchRSS(ctx, src)
	case model.SourceSocialPage:
		candidates, err = c.fetchSocial(ctx, src)
	default:
		c.log.Warn("unknown source kind", "source_id", src.ID, "kind", src.Kind)
		return
	}
	if err != nil {
		c.log.Error("crawl source", "source_id", src.ID, "name", src.Name, "error", err)
		res.Errors++
		return
	}

	filters, err := c.store.ListFilters(ctx, src.ID)
	if err != nil {
		c.log.Error("list filters", "source_id", src.ID, "error", err)
		res.Errors++
		return
	}

	for _, item := range candidates {
		if item.Title == "" || item.NativeID == "" {
			continue
		}
		if !filter.Match(filter.Candidate{Title: item.Title, Content: item.Content}, filters) {
			continue
		}

		exists, err := c.store.RawItemExists(ctx, item.Kind, item.NativeID)
		if err != nil {
			c.log.Error("check duplicate", "native_id", item.NativeID, "error", err)
			res.Errors++
			continue
		}
		if exists {
			res.Skipped++
			continue
		}

		item.SourceName = src.Name
		if err := c.store.CreateRawItem(ctx, &item); err != nil {
			c.log.Error("insert raw item", "native_id", item.NativeID, "error", err)
			res.Errors++
			continue
		}
		res.Inserted++
	}
}

func (c *Crawler) fetchRSS(ctx context.Context, src model.Source) ([]model.RawItem, error) {
	feed, err := c.feeds.Fetch(ctx, src.Endpoint)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if len(entries) > rssBatchLimit {
		entries = entries[:rssBatchLimit]
	}

	now := c.now()
	var items []model.RawItem
	for _, entry := range entries {
		content := feedItemContent(entry)
		if content == "" {
			continue
		}
		items = append(items, model.RawItem{
			Kind:        model.SourceRSS,
			NativeID:    feedItemGUID(entry),
			Title:       entry.Title,
			Content:     content,
			PublishedAt: feedItemPublished(entry, now),
			OriginURL:   entry.Link,
		})
	}
	return items, nil
}

func (c *Crawler) fetchSocial(ctx context.Context, src model.Source) ([]model.RawItem, error) {
	token := ActiveToken(c.now().Day(), c.tokenA, c.tokenB)
	if token == "" {
		return nil, errMissingToken
	}
	return c.scraper.Fetch(ctx, src.Endpoint, token, c.now())
}
