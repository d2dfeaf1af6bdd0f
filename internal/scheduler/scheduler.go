// Package scheduler fires the pipeline on a fixed daily timetable without an
// external cron.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"newsdesk/internal/model"
	"newsdesk/internal/notify"
	"newsdesk/internal/pipeline"
)

const tickInterval = 30 * time.Second

// Scheduler runs the full pipeline once a day and a second top-post
// generation later the same day. Times are local wall clock in HH:MM.
type Scheduler struct {
	orchestrator *pipeline.Orchestrator
	generator    *pipeline.Generator
	notifier     *notify.Notifier
	dailyAt      string
	topAt        string
	log          *slog.Logger
	now          func() time.Time

	lastDailyDate string
	lastTopDate   string
}

// New creates a Scheduler. notifier may be nil.
func New(orch *pipeline.Orchestrator, gen *pipeline.Generator, notifier *notify.Notifier, dailyAt, topAt string, log *slog.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orch,
		generator:    gen,
		notifier:     notifier,
		dailyAt:      dailyAt,
		topAt:        topAt,
		log:          log,
		now:          time.Now,
	}
}

// Run ticks until the context is canceled. Each scheduled job fires at most
// once per calendar day, so a restart within the same minute does not double
// run.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("scheduler started", "daily_at", s.dailyAt, "top_at", s.topAt)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	clock := now.Format("15:04")
	date := now.Format("2006-01-02")

	if clock == s.dailyAt && s.lastDailyDate != date {
		s.lastDailyDate = date
		s.runDaily(ctx)
	}
	if clock == s.topAt && s.lastTopDate != date {
		s.lastTopDate = date
		s.runTop(ctx)
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	s.log.Info("scheduled daily pipeline run starting")
	report := s.orchestrator.Run(ctx)
	if s.notifier != nil {
		if err := s.notifier.ReportRun(report); err != nil {
			s.log.Error("notify run report", "error", err)
		}
	}
}

func (s *Scheduler) runTop(ctx context.Context) {
	s.log.Info("scheduled top post generation starting")
	res, err := s.generator.Run(ctx, model.VariantDailyTop)
	if err != nil {
		s.log.Error("scheduled top post generation", "error", err)
		return
	}
	s.log.Info("scheduled top post generation done", "created", res.Created, "errors", res.Errors)
}
