package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("REMOVEBG_API_KEY", "api-key")
}

func TestParseConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "7777" {
		t.Errorf("expected port 7777, got %q", cfg.HTTPPort)
	}
	if cfg.RemoveBgSize != "auto" {
		t.Errorf("expected size auto, got %q", cfg.RemoveBgSize)
	}
	if cfg.RemoveBgTimeout != 0 {
		t.Errorf("expected no timeout, got %s", cfg.RemoveBgTimeout)
	}
	if cfg.DashboardLimit != 50 {
		t.Errorf("expected dashboard limit 50, got %d", cfg.DashboardLimit)
	}
	if cfg.DashboardRefresh != 10*time.Second {
		t.Errorf("expected refresh 10s, got %s", cfg.DashboardRefresh)
	}
	if cfg.StorageLocalDir != "public" {
		t.Errorf("expected local dir public, got %q", cfg.StorageLocalDir)
	}
	if cfg.BotTrigger == "" {
		t.Error("expected default trigger")
	}
}

func TestParseConfigMissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		token string
		key   string
	}{
		{name: "missing bot token", token: "", key: "api-key"},
		{name: "missing api key", token: "bot-token", key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_BOT_TOKEN", tt.token)
			t.Setenv("REMOVEBG_API_KEY", tt.key)

			if _, err := ParseConfig(); err == nil {
				t.Fatal("expected error for missing credential")
			}
		})
	}
}

func TestParseConfigClampsDashboardLimit(t *testing.T) {
	setRequired(t)
	t.Setenv("DASHBOARD_LIMIT", "500")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DashboardLimit != 50 {
		t.Errorf("expected clamp to 50, got %d", cfg.DashboardLimit)
	}
}

func TestLevel(t *testing.T) {
	if got := (Config{LogLevel: "debug"}).Level(); got != logrus.DebugLevel {
		t.Errorf("expected debug, got %s", got)
	}
	if got := (Config{LogLevel: "nonsense"}).Level(); got != logrus.InfoLevel {
		t.Errorf("expected fallback to info, got %s", got)
	}
}
