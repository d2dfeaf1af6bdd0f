// Package render calls an external infographic service that turns a ranked
// news selection into a shareable image.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"newsdesk/internal/model"
)

// Renderer produces an infographic for a post variant and returns its URL.
type Renderer interface {
	Render(ctx context.Context, variant string, items []model.RankedEntry) (string, error)
}

// HTTPClient abstracts the HTTP transport for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service renders infographics over HTTP. The remote endpoint accepts the
// variant name and the ranked items and responds with an image URL.
type Service struct {
	client   HTTPClient
	endpoint string
}

// New creates a Service talking to the given endpoint.
func New(client HTTPClient, endpoint string) *Service {
	return &Service{client: client, endpoint: endpoint}
}

type renderRequest struct {
	Variant string              `json:"variant"`
	Items   []model.RankedEntry `json:"items"`
}

type renderResponse struct {
	ImageURL string `json:"image_url"`
}

func (s *Service) Render(ctx context.Context, variant string, items []model.RankedEntry) (string, error) {
	body, err := json.Marshal(renderRequest{Variant: variant, Items: items})
	if err != nil {
		return "", fmt.Errorf("marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("render service returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read render response: %w", err)
	}

	var parsed renderResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	if parsed.ImageURL == "" {
		return "", fmt.Errorf("render service returned empty image URL")
	}
	return parsed.ImageURL, nil
}
