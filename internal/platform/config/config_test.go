package config

import (
	"os"
	"testing"
	"time"
)

// Test environment variable keys.
const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testEnvBotToken    = "BOT_TOKEN"
	testEnvAdminIDs    = "ADMIN_IDS"
)

// Test values.
const (
	testPostgresDSN = "postgres://localhost/test"
	testBotToken    = "123456:ABC-DEF"
	testErrLoad     = "Load() error = %v"
	testDefaultEnv  = "local"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvBotToken, testBotToken)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)
	os.Unsetenv(testEnvBotToken)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q, want %q", cfg.PostgresDSN, testPostgresDSN)
	}

	if cfg.BotToken != testBotToken {
		t.Errorf("BotToken = %q, want %q", cfg.BotToken, testBotToken)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	// Explicitly unset variables that might be in .env to test actual defaults
	os.Unsetenv("APP_ENV")
	os.Unsetenv("HEALTH_PORT")
	os.Unsetenv("DETAIL_LIMIT")
	os.Unsetenv("STATS_REFRESH_INTERVAL")
	os.Unsetenv("BOT_PAUSED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != testDefaultEnv {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, testDefaultEnv)
	}

	if cfg.HealthPort != 8080 {
		t.Errorf("HealthPort default = %d, want %d", cfg.HealthPort, 8080)
	}

	if cfg.DetailLimit != 30 {
		t.Errorf("DetailLimit default = %d, want %d", cfg.DetailLimit, 30)
	}

	if cfg.StatsRefreshInterval != 5*time.Minute {
		t.Errorf("StatsRefreshInterval default = %v, want %v", cfg.StatsRefreshInterval, 5*time.Minute)
	}

	if cfg.BotPaused {
		t.Error("BotPaused default = true, want false")
	}
}

func TestLoad_BotPaused(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("BOT_PAUSED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if !cfg.BotPaused {
		t.Error("BotPaused = false, want true")
	}
}

func TestLoad_AdminIDs(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv(testEnvAdminIDs, "111,222,333")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if len(cfg.AdminIDs) != 3 {
		t.Fatalf("AdminIDs length = %d, want %d", len(cfg.AdminIDs), 3)
	}

	expected := []int64{111, 222, 333}
	for i, want := range expected {
		if cfg.AdminIDs[i] != want {
			t.Errorf("AdminIDs[%d] = %d, want %d", i, cfg.AdminIDs[i], want)
		}
	}
}

func TestLoad_InvalidNumeric(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("HEALTH_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("expected error for invalid HEALTH_PORT")
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []int64{111, 222}}

	if !cfg.IsAdmin(111) {
		t.Error("IsAdmin(111) = false, want true")
	}

	if cfg.IsAdmin(999) {
		t.Error("IsAdmin(999) = true, want false")
	}
}
