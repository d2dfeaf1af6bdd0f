// Package publisher posts approved drafts to a Facebook page through the
// Graph API and reads back basic engagement insights.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const graphBase = "https://graph.facebook.com/v19.0"

// HTTPClient abstracts the HTTP transport for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Insights is the engagement snapshot of one published post.
type Insights struct {
	Reactions int `json:"reactions"`
	Comments  int `json:"comments"`
	Shares    int `json:"shares"`
}

// Publisher talks to the Graph API for a single page.
type Publisher struct {
	client      HTTPClient
	base        string
	pageID      string
	accessToken string
}

// New creates a Publisher for the given page.
func New(client HTTPClient, pageID, accessToken string) *Publisher {
	return &Publisher{client: client, base: graphBase, pageID: pageID, accessToken: accessToken}
}

// PublishText publishes a plain text post and returns the platform post ID.
func (p *Publisher) PublishText(ctx context.Context, message string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	return p.create(ctx, p.pageID+"/feed", form)
}

// PublishPhoto publishes a photo post with a caption and returns the platform
// post ID. imageURL must be publicly reachable by the platform.
func (p *Publisher) PublishPhoto(ctx context.Context, message, imageURL string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("url", imageURL)
	return p.create(ctx, p.pageID+"/photos", form)
}

func (p *Publisher) create(ctx context.Context, path string, form url.Values) (string, error) {
	form.Set("access_token", p.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+"/"+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var parsed struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := p.do(req, &parsed); err != nil {
		return "", err
	}
	// Photo uploads report the post under post_id, feed posts under id.
	if parsed.PostID != "" {
		return parsed.PostID, nil
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("graph api returned no post id")
	}
	return parsed.ID, nil
}

// Delete removes a published post from the platform.
func (p *Publisher) Delete(ctx context.Context, platformPostID string) error {
	u := fmt.Sprintf("%s/%s?access_token=%s", p.base, platformPostID, url.QueryEscape(p.accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}

	var parsed struct {
		Success bool `json:"success"`
	}
	if err := p.do(req, &parsed); err != nil {
		return err
	}
	if !parsed.Success {
		return fmt.Errorf("graph api refused to delete post %s", platformPostID)
	}
	return nil
}

// Insights fetches reaction, comment and share counts for a published post.
func (p *Publisher) Insights(ctx context.Context, platformPostID string) (*Insights, error) {
	q := url.Values{}
	q.Set("fields", "reactions.summary(total_count),comments.summary(total_count),shares")
	q.Set("access_token", p.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/"+platformPostID+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create insights request: %w", err)
	}

	var parsed struct {
		Reactions struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"reactions"`
		Comments struct {
			Summary struct {
				TotalCount int `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Shares struct {
			Count int `json:"count"`
		} `json:"shares"`
	}
	if err := p.do(req, &parsed); err != nil {
		return nil, err
	}
	return &Insights{
		Reactions: parsed.Reactions.Summary.TotalCount,
		Comments:  parsed.Comments.Summary.TotalCount,
		Shares:    parsed.Shares.Count,
	}, nil
}

func (p *Publisher) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read graph api response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("graph api error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode graph api response: %w", err)
	}
	return nil
}
