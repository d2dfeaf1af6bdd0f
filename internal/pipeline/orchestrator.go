package pipeline

import (
	"context"
	"log/slog"
	"time"

	"newsdesk/internal/crawler"
)

// Step records the outcome of one pipeline stage inside a run report.
type Step struct {
	Name   string `json:"name"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RunReport is the full log of one orchestrated pipeline run. On failure the
// steps before the failed one keep their results.
type RunReport struct {
	Timestamp   time.Time `json:"timestamp"`
	Steps       []Step    `json:"steps"`
	Success     bool      `json:"success"`
	FailedStage string    `json:"failed_stage,omitempty"`
}

// Orchestrator chains the five pipeline stages. A stage error halts the run;
// every stage is idempotent, so rerunning after a fix picks up where the data
// left off.
type Orchestrator struct {
	crawler    *crawler.Crawler
	summarizer *Summarizer
	analyzer   *Analyzer
	ranker     *Ranker
	generator  *Generator
	log        *slog.Logger
	now        func() time.Time
}

// NewOrchestrator wires the stages into one runnable pipeline.
func NewOrchestrator(c *crawler.Crawler, s *Summarizer, a *Analyzer, r *Ranker, g *Generator, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		crawler:    c,
		summarizer: s,
		analyzer:   a,
		ranker:     r,
		generator:  g,
		log:        log,
		now:        time.Now,
	}
}

type namedStage struct {
	name string
	run  func(ctx context.Context) (any, error)
}

// Run executes crawl, summarize, analyze, rank and generate in order and
// returns the report. The report is returned even when a stage fails.
func (o *Orchestrator) Run(ctx context.Context) *RunReport {
	report := &RunReport{Timestamp: o.now(), Success: true}

	stages := []namedStage{
		{"crawl", func(ctx context.Context) (any, error) { return o.crawler.Run(ctx) }},
		{"summarize", func(ctx context.Context) (any, error) { return o.summarizer.Run(ctx) }},
		{"analyze", func(ctx context.Context) (any, error) { return o.analyzer.Run(ctx) }},
		{"rank", func(ctx context.Context) (any, error) { return o.ranker.Run(ctx) }},
		{"generate", func(ctx context.Context) (any, error) { return o.generator.Run(ctx) }},
	}

	for _, stage := range stages {
		o.log.Info("pipeline stage starting", "stage", stage.name)
		result, err := stage.run(ctx)
		step := Step{Name: stage.name, Result: result}
		if err != nil {
			step.Error = err.Error()
			report.Steps = append(report.Steps, step)
			report.Success = false
			report.FailedStage = stage.name
			o.log.Error("pipeline stage failed", "stage", stage.name, "error", err)
			return report
		}
		report.Steps = append(report.Steps, step)
		o.log.Info("pipeline stage done", "stage", stage.name)
	}
	return report
}
