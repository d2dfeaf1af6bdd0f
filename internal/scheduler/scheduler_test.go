package scheduler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newsdesk/internal/crawler"
	"newsdesk/internal/llm"
	"newsdesk/internal/notify"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/storage"
)

type stubSender struct{ sent []tgbotapi.Chattable }

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

type noopLLM struct{}

func (noopLLM) Complete(_ context.Context, _ llm.Request) (string, error) { return "{}", nil }

type noopTransport struct{}

func (noopTransport) Do(_ *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody}, nil
}

func newTestScheduler(t *testing.T, sender *stubSender) *Scheduler {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := crawler.NewWithClients(store,
		crawler.NewFeedFetcher(noopTransport{}),
		crawler.NewScrapeClient("", noopTransport{}),
		"token", "", log, time.Now)
	summarizer := pipeline.NewSummarizer(store, noopLLM{}, "neutral", log)
	summarizer.Delay = 0
	analyzer := pipeline.NewAnalyzer(store, noopLLM{}, log)
	analyzer.Delay = 0
	ranker := pipeline.NewRanker(store, noopLLM{}, log)
	generator := pipeline.NewGenerator(store, noopLLM{}, nil, "neutral", log)
	generator.Delay = 0
	orch := pipeline.NewOrchestrator(c, summarizer, analyzer, ranker, generator, log)

	var notifier *notify.Notifier
	if sender != nil {
		notifier = notify.New(sender, 1)
	}
	return New(orch, generator, notifier, "06:00", "18:00", log)
}

func TestSchedulerFiresDailyOncePerDay(t *testing.T) {
	ctx := context.Background()
	sender := &stubSender{}
	s := newTestScheduler(t, sender)

	at := time.Date(2025, 6, 10, 6, 0, 10, 0, time.UTC)
	s.now = func() time.Time { return at }

	s.tick(ctx)
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 run report, got %d", len(sender.sent))
	}

	// Another tick inside the same minute must not fire again.
	s.tick(ctx)
	if len(sender.sent) != 1 {
		t.Errorf("daily job fired twice on one day, got %d reports", len(sender.sent))
	}

	// The next day it fires again.
	at = at.AddDate(0, 0, 1)
	s.tick(ctx)
	if len(sender.sent) != 2 {
		t.Errorf("expected daily job to fire on the next day, got %d reports", len(sender.sent))
	}
}

func TestSchedulerIgnoresOtherTimes(t *testing.T) {
	ctx := context.Background()
	sender := &stubSender{}
	s := newTestScheduler(t, sender)

	s.now = func() time.Time { return time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC) }
	s.tick(ctx)
	if len(sender.sent) != 0 {
		t.Errorf("nothing should fire at 12:30, got %d reports", len(sender.sent))
	}
	if s.lastDailyDate != "" || s.lastTopDate != "" {
		t.Errorf("no job must be marked as run: %q %q", s.lastDailyDate, s.lastTopDate)
	}
}

func TestSchedulerTopJob(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(t, nil)

	s.now = func() time.Time { return time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC) }
	s.tick(ctx)
	if s.lastTopDate != "2025-06-10" {
		t.Errorf("top job did not fire: %q", s.lastTopDate)
	}
	if s.lastDailyDate != "" {
		t.Errorf("daily job must not fire at 18:00: %q", s.lastDailyDate)
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	s := newTestScheduler(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
