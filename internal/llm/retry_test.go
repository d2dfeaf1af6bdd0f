package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"
)

type flakyClient struct {
	failures int
	err      error
	calls    int
}

func (f *flakyClient) Complete(_ context.Context, _ Request) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetryingRecoversFromRateLimit(t *testing.T) {
	inner := &flakyClient{failures: 2, err: fmt.Errorf("openai: %w", ErrRateLimited)}
	r := WithRetry(inner, testLogger())
	r.Delay = time.Millisecond

	out, err := r.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "ok" {
		t.Errorf("out = %q", out)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inner.calls)
	}
}

func TestRetryingGivesUpAfterAttempts(t *testing.T) {
	inner := &flakyClient{failures: 100, err: fmt.Errorf("anthropic: %w", ErrRateLimited)}
	r := WithRetry(inner, testLogger())
	r.Delay = time.Millisecond

	_, err := r.Complete(context.Background(), Request{})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if inner.calls != 5 {
		t.Errorf("expected 5 attempts, got %d", inner.calls)
	}
}

func TestRetryingDoesNotRetryOtherErrors(t *testing.T) {
	inner := &flakyClient{failures: 100, err: errors.New("invalid api key")}
	r := WithRetry(inner, testLogger())
	r.Delay = time.Millisecond

	_, err := r.Complete(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("non rate-limit errors must not be retried, got %d calls", inner.calls)
	}
}
