// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
)

// LLM provider selectors.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var runAtPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Config holds the application configuration.
type Config struct {
	DatabasePath string
	ListenAddr   string
	LogLevel     string

	LLMProvider     string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	CronSecret string

	ScraperEndpoint string
	ScraperToken    string
	ScraperToken2   string

	RenderURL string

	PageID          string
	PageAccessToken string

	TelegramBotToken string
	TelegramChatID   int64

	SchedulerEnabled bool
	DailyRunAt       string
	TopPostRunAt     string

	Tone string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:     getenv("DATABASE_PATH", "./data/newsdesk.db"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LLMProvider:      getenv("LLM_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		ScraperEndpoint:  os.Getenv("SCRAPER_ENDPOINT"),
		ScraperToken:     os.Getenv("SCRAPER_TOKEN"),
		ScraperToken2:    os.Getenv("SCRAPER_TOKEN_2"),
		RenderURL:        os.Getenv("RENDER_URL"),
		PageID:           os.Getenv("PAGE_ID"),
		PageAccessToken:  os.Getenv("PAGE_ACCESS_TOKEN"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		SchedulerEnabled: os.Getenv("SCHEDULER_ENABLED") != "false",
		DailyRunAt:       getenv("DAILY_RUN_AT", "06:00"),
		TopPostRunAt:     getenv("TOP_POST_RUN_AT", "18:00"),
		Tone:             getenv("POST_TONE", "friendly, factual, no hype"),
	}

	if cfg.CronSecret == "" {
		return nil, fmt.Errorf("CRON_SECRET is required")
	}

	switch cfg.LLMProvider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for LLM_PROVIDER=openai")
		}
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for LLM_PROVIDER=anthropic")
		}
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}

	for _, at := range []string{cfg.DailyRunAt, cfg.TopPostRunAt} {
		if !runAtPattern.MatchString(at) {
			return nil, fmt.Errorf("invalid run time %q: want HH:MM", at)
		}
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		var chatID int64
		if _, err := fmt.Sscanf(raw, "%d", &chatID); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = chatID
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
