package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	retryAttempts  = 5
	retryBaseDelay = 10 * time.Second
)

// Retrying wraps a Client with rate-limit retry: up to 5 attempts with
// exponential backoff starting at 10s. Every other error is returned as is.
type Retrying struct {
	inner Client
	log   *slog.Logger

	// Delay is the base backoff. Tests lower it.
	Delay time.Duration
}

var _ Client = (*Retrying)(nil)

// WithRetry wraps client in rate-limit retry behavior.
func WithRetry(client Client, log *slog.Logger) *Retrying {
	if log == nil {
		log = slog.Default()
	}
	return &Retrying{inner: client, log: log, Delay: retryBaseDelay}
}

// Complete calls the wrapped client, retrying on ErrRateLimited only.
func (r *Retrying) Complete(ctx context.Context, req Request) (string, error) {
	var out string
	err := retry.Do(
		func() error {
			text, err := r.inner.Complete(ctx, req)
			if err != nil {
				return err
			}
			out = text
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(r.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrRateLimited)
		}),
		retry.OnRetry(func(attempt uint, err error) {
			r.log.Warn("llm rate limited, backing off", "attempt", attempt+1, "error", err)
		}),
	)
	return out, err
}
