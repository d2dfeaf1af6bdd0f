// Package llm is the boundary to the generative model providers. It exposes a
// provider-agnostic completion call, rate-limit retry, and parsing of the
// model's untrusted JSON output.
package llm

import (
	"context"
	"errors"
)

// ErrRateLimited marks a provider throttling response. It is the only error
// the retry wrapper will retry on.
var ErrRateLimited = errors.New("rate limited")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

// Request describes a single completion call.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider for JSON output. The returned text is still
	// treated as untrusted and must go through ExtractJSON.
	JSONMode bool
}

// Client performs a completion call against a generative model.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
