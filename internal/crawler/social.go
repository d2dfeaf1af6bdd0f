package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/model"
)

const socialResultsLimit = 5

// ScrapeClient calls the external page-scraping actor and maps its unstable
// result schema onto RawItem candidates.
type ScrapeClient struct {
	endpoint string
	client   HTTPClient
}

// NewScrapeClient builds a client for the given actor endpoint.
func NewScrapeClient(endpoint string, client HTTPClient) *ScrapeClient {
	return &ScrapeClient{endpoint: endpoint, client: client}
}

// Fetch runs the scraper against a page URL and returns RawItem candidates.
// Records with no usable text are discarded here.
func (s *ScrapeClient) Fetch(ctx context.Context, pageURL, token string, now time.Time) ([]model.RawItem, error) {
	if s.endpoint == "" {
		return nil, fmt.Errorf("scraper endpoint not configured")
	}
	if !strings.HasPrefix(pageURL, "http") {
		return nil, fmt.Errorf("invalid page url %q: must be a full URL", pageURL)
	}

	input := map[string]any{
		"startUrls":    []map[string]string{{"url": pageURL}},
		"resultsLimit": socialResultsLimit,
		"onlyPosts":    true,
		"useStealth":   true,
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal scrape input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?token="+token, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call scraper: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("scraper error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var records []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode scraper response: %w", err)
	}

	var items []model.RawItem
	for _, rec := range records {
		item := mapSocialRecord(rec, now)
		if item.Content == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// mapSocialRecord maps one scraper record to a RawItem candidate. The
// scraper's field names drift between runs, so every logical attribute is
// extracted from an ordered list of candidate keys; field renames upstream
// only ever touch this function.
func mapSocialRecord(rec map[string]any, now time.Time) model.RawItem {
	text := firstString(rec, "postText", "text", "message", "caption")

	postURL := firstString(rec, "url", "postUrl", "link")
	if postURL == "" {
		if id := firstString(rec, "id", "postId"); id != "" {
			postURL = "https://facebook.com/" + id
		}
	}

	published := firstTime(rec, now, "time", "timestamp", "created_time", "date")

	title := text
	if len([]rune(title)) > 100 {
		title = string([]rune(title)[:100]) + "..."
	}

	return model.RawItem{
		Kind:        model.SourceSocialPage,
		NativeID:    postURL,
		Title:       title,
		Content:     text,
		PublishedAt: published,
		OriginURL:   postURL,
		Engagement: model.Engagement{
			Likes:     firstInt(rec, "likes", "likesCount"),
			Shares:    firstInt(rec, "shares", "sharesCount"),
			Comments:  firstInt(rec, "comments", "commentsCount"),
			Reactions: firstInt(rec, "topReactionsCount", "reactionsCount"),
		},
	}
}

func firstString(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := rec[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstInt(rec map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func firstTime(rec map[string]any, fallback time.Time, keys ...string) time.Time {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case float64:
			return time.Unix(int64(v), 0).UTC()
		case string:
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
				if t, err := time.Parse(layout, v); err == nil {
					return t
				}
			}
		}
	}
	return fallback
}
