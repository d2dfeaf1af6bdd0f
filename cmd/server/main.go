package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newsdesk/internal/config"
	"newsdesk/internal/crawler"
	"newsdesk/internal/llm"
	"newsdesk/internal/notify"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/publisher"
	"newsdesk/internal/render"
	"newsdesk/internal/scheduler"
	"newsdesk/internal/server"
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
	summarizer := pipeline.NewSummarizer(store, client, cfg.Tone, log)
	analyzer := pipeline.NewAnalyzer(store, client, log)
	ranker := pipeline.NewRanker(store, client, log)
	generator := pipeline.NewGenerator(store, client, renderer, cfg.Tone, log)
	orchestrator := pipeline.NewOrchestrator(crawl, summarizer, analyzer, ranker, generator, log)

	var notifier *notify.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		bot, err := notify.NewBot(cfg.TelegramBotToken)
		if err != nil {
			log.Error("create telegram bot", "error", err)
			os.Exit(1)
		}
		notifier = notify.New(bot, cfg.TelegramChatID)
	}

	srv := server.New(server.Deps{
		Store:        store,
		Crawler:      crawl,
		Summarizer:   summarizer,
		Analyzer:     analyzer,
		Ranker:       ranker,
		Generator:    generator,
		Orchestrator: orchestrator,
		Publisher:    publisher.New(http.DefaultClient, cfg.PageID, cfg.PageAccessToken),
		CronSecret:   cfg.CronSecret,
		Log:          log,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.SchedulerEnabled {
		sched := scheduler.New(orchestrator, generator, notifier, cfg.DailyRunAt, cfg.TopPostRunAt, log)
		go sched.Run(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown server", "error", err)
		}
	}()

	log.Info("starting server", "addr", cfg.ListenAddr)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		log.Error("server", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
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
