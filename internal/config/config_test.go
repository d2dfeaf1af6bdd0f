package config

import (
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CRON_SECRET", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("LLMProvider = %q", cfg.LLMProvider)
	}
	if cfg.DailyRunAt != "06:00" || cfg.TopPostRunAt != "18:00" {
		t.Errorf("run times = %q / %q", cfg.DailyRunAt, cfg.TopPostRunAt)
	}
	if !cfg.SchedulerEnabled {
		t.Error("scheduler must default to enabled")
	}
}

func TestLoadMissingCronSecret(t *testing.T) {
	t.Setenv("CRON_SECRET", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without CRON_SECRET")
	}
}

func TestLoadProviderValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "openai without key",
			env:  map[string]string{"LLM_PROVIDER": "openai", "OPENAI_API_KEY": ""},

			wantErr: true,
		},
		{
			name:    "anthropic with key",
			env:     map[string]string{"LLM_PROVIDER": "anthropic", "ANTHROPIC_API_KEY": "sk-ant"},
			wantErr: false,
		},
		{
			name:    "anthropic without key",
			env:     map[string]string{"LLM_PROVIDER": "anthropic", "OPENAI_API_KEY": "sk-test", "ANTHROPIC_API_KEY": ""},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"LLM_PROVIDER": "bard", "OPENAI_API_KEY": "sk-test"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CRON_SECRET", "secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("load: %v", err)
			}
		})
	}
}

func TestLoadRunTimeValidation(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"06:00", false},
		{"23:59", false},
		{"00:00", false},
		{"24:00", true},
		{"6:00", true},
		{"06:60", true},
		{"noon", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv("DAILY_RUN_AT", tt.value)
			_, err := Load()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for %q", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("load: %v", err)
			}
		})
	}
}

func TestLoadChatID(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_CHAT_ID", "-100123456")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramChatID != -100123456 {
		t.Errorf("TelegramChatID = %d", cfg.TelegramChatID)
	}

	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad chat id")
	}
}
