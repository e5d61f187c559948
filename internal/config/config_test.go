package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

var envVars = []string{
	"VALUATION_PORT", "VALUATION_METRICS_PORT", "VALUATION_ADMIN_TOKEN",
	"VALUATION_CORS_ORIGINS", "VALUATION_RATE_LIMIT_PER_MINUTE",
	"VALUATION_STORE_DRIVER", "VALUATION_STORE_PATH", "VALUATION_DATABASE_URL",
	"VALUATION_HERMES_URL", "VALUATION_CHROME_PATH", "VALUATION_REDIS_URL",
	"VALUATION_REPORT_CACHE_TTL_SECONDS", "VALUATION_RENDER_TIMEOUT_SECONDS", "VALUATION_REFERENCE_PATH",
	"VALUATION_LOG_LEVEL", "VALUATION_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	for _, k := range envVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8700 {
		t.Errorf("expected port 8700, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected metrics port 8701, got %d", cfg.Server.MetricsPort)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"*"}) {
		t.Errorf("expected wildcard cors origins, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected rate limit 120, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "valoraciones.db" {
		t.Errorf("expected sqlite store at valoraciones.db, got %s %s", cfg.Store.Driver, cfg.Store.Path)
	}
	if cfg.Hermes.URL != "" {
		t.Errorf("expected events disabled by default, got %s", cfg.Hermes.URL)
	}
	if cfg.Report.RedisURL != "" {
		t.Errorf("expected no redis by default, got %s", cfg.Report.RedisURL)
	}
	if cfg.CacheTTL() != 24*time.Hour {
		t.Errorf("expected CacheTTL 24h, got %v", cfg.CacheTTL())
	}
	if cfg.RenderTimeout() != time.Minute {
		t.Errorf("expected RenderTimeout 1m, got %v", cfg.RenderTimeout())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected log format 'json', got '%s'", cfg.Logging.Format)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VALUATION_PORT", "9000")
	t.Setenv("VALUATION_METRICS_PORT", "9001")
	t.Setenv("VALUATION_ADMIN_TOKEN", "secret-token")
	t.Setenv("VALUATION_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VALUATION_STORE_DRIVER", "postgres")
	t.Setenv("VALUATION_DATABASE_URL", "postgres://localhost/valuation_test")
	t.Setenv("VALUATION_HERMES_URL", "nats://nats:4222")
	t.Setenv("VALUATION_REDIS_URL", "redis://redis:6379/0")
	t.Setenv("VALUATION_REPORT_CACHE_TTL_SECONDS", "60")
	t.Setenv("VALUATION_RENDER_TIMEOUT_SECONDS", "15")
	t.Setenv("VALUATION_REFERENCE_PATH", "/etc/valuation/reference.yaml")
	t.Setenv("VALUATION_LOG_LEVEL", "debug")
	t.Setenv("VALUATION_RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MetricsPort != 9001 {
		t.Errorf("expected metrics port 9001, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Server.AdminToken != "secret-token" {
		t.Errorf("expected admin token 'secret-token', got '%s'", cfg.Server.AdminToken)
	}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("unexpected cors origins %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.RateLimitPerMinute != 120 {
		t.Errorf("expected invalid rate limit to keep default, got %d", cfg.Server.RateLimitPerMinute)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("expected postgres driver, got '%s'", cfg.Store.Driver)
	}
	if cfg.Store.URL != "postgres://localhost/valuation_test" {
		t.Errorf("expected database URL, got '%s'", cfg.Store.URL)
	}
	if cfg.Hermes.URL != "nats://nats:4222" {
		t.Errorf("expected hermes URL, got '%s'", cfg.Hermes.URL)
	}
	if cfg.Report.RedisURL != "redis://redis:6379/0" {
		t.Errorf("expected redis URL, got '%s'", cfg.Report.RedisURL)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("expected CacheTTL 1m, got %v", cfg.CacheTTL())
	}
	if cfg.RenderTimeout() != 15*time.Second {
		t.Errorf("expected RenderTimeout 15s, got %v", cfg.RenderTimeout())
	}
	if cfg.Engine.ReferencePath != "/etc/valuation/reference.yaml" {
		t.Errorf("expected reference path, got '%s'", cfg.Engine.ReferencePath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 8800
  admin_token: file-token
store:
  driver: sqlite
  path: /var/lib/valuation/data.db
report:
  chrome_path: /opt/chrome/chrome
logging:
  format: text
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8800 || cfg.Server.AdminToken != "file-token" {
		t.Errorf("file server section not applied: %+v", cfg.Server)
	}
	if cfg.Server.MetricsPort != 8701 {
		t.Errorf("expected default metrics port to survive, got %d", cfg.Server.MetricsPort)
	}
	if cfg.Store.Path != "/var/lib/valuation/data.db" {
		t.Errorf("expected store path from file, got %s", cfg.Store.Path)
	}
	if cfg.Report.ChromePath != "/opt/chrome/chrome" {
		t.Errorf("expected chrome path from file, got %s", cfg.Report.ChromePath)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}

	t.Setenv("VALUATION_PORT", "8900")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8900 {
		t.Errorf("expected env to win over file, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
