package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("WATCHLIST_REFRESH_SECS", "")
	t.Setenv("BACKTEST_MAX_STEPS", "")

	cfg := Load()

	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected redis default, got %q", cfg.RedisURL)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.WatchlistRefreshSecs != 1800 {
		t.Fatalf("expected default refresh of 1800s, got %d", cfg.WatchlistRefreshSecs)
	}
	if cfg.BacktestMaxSteps != 500 {
		t.Fatalf("expected default max steps of 500, got %d", cfg.BacktestMaxSteps)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-123")
	t.Setenv("DATABASE_URL", "postgres://localhost/pythia")
	t.Setenv("REDIS_URL", "redis-host:6380")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("WATCHLIST_REFRESH_SECS", "600")
	t.Setenv("BACKTEST_MAX_STEPS", "100")

	cfg := Load()

	if cfg.TelegramBotToken != "token-123" {
		t.Fatalf("unexpected token: %q", cfg.TelegramBotToken)
	}
	if cfg.DatabaseURL != "postgres://localhost/pythia" {
		t.Fatalf("unexpected database url: %q", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis-host:6380" {
		t.Fatalf("unexpected redis url: %q", cfg.RedisURL)
	}
	if cfg.HTTPPort != 9090 || cfg.WatchlistRefreshSecs != 600 || cfg.BacktestMaxSteps != 100 {
		t.Fatalf("unexpected numeric settings: %+v", cfg)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-port")
	t.Setenv("WATCHLIST_REFRESH_SECS", "-5")
	t.Setenv("BACKTEST_MAX_STEPS", "0")

	cfg := Load()

	if cfg.HTTPPort != 8080 {
		t.Fatalf("invalid port should fall back to 8080, got %d", cfg.HTTPPort)
	}
	if cfg.WatchlistRefreshSecs != 1800 {
		t.Fatalf("negative refresh should fall back to 1800, got %d", cfg.WatchlistRefreshSecs)
	}
	if cfg.BacktestMaxSteps != 500 {
		t.Fatalf("zero max steps should fall back to 500, got %d", cfg.BacktestMaxSteps)
	}
}
