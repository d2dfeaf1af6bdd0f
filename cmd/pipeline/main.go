// Command pipeline runs the full pipeline once and prints the report as
// JSON. Useful from cron or for local runs without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"newsdesk/internal/config"
	"newsdesk/internal/crawler"
	"newsdesk/internal/llm"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/render"
	"newsdesk/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var base llm.Client
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		base = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		base = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	client := llm.WithRetry(base, log)

	var renderer render.Renderer
	if cfg.RenderURL != "" {
		renderer = render.New(http.DefaultClient, cfg.RenderURL)
	}

	crawl := crawler.New(store, cfg.ScraperEndpoint, cfg.ScraperToken, cfg.ScraperToken2, log)
	orchestrator := pipeline.NewOrchestrator(
		crawl,
		pipeline.NewSummarizer(store, client, cfg.Tone, log),
		pipeline.NewAnalyzer(store, client, log),
		pipeline.NewRanker(store, client, log),
		pipeline.NewGenerator(store, client, renderer, cfg.Tone, log),
		log,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report := orchestrator.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error("encode report", "error", err)
		os.Exit(1)
	}
	if !report.Success {
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
