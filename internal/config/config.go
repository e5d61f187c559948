package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Hermes  HermesConfig  `yaml:"hermes"`
	Report  ReportConfig  `yaml:"report"`
	Engine  EngineConfig  `yaml:"engine"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	MetricsPort int      `yaml:"metrics_port"`
	AdminToken  string   `yaml:"admin_token"`
	CORSOrigins []string `yaml:"cors_origins"`
	// RateLimitPerMinute caps requests per client; 0 disables the limiter.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type ReportConfig struct {
	ChromePath       string `yaml:"chrome_path"`
	RedisURL         string `yaml:"redis_url"`
	CacheTTLSeconds  int    `yaml:"cache_ttl_seconds"`
	RenderTimeoutSec int    `yaml:"render_timeout_seconds"`
}

type EngineConfig struct {
	// ReferencePath points at a YAML file overriding the technology and rate tables.
	ReferencePath string `yaml:"reference_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Report.CacheTTLSeconds) * time.Second
}

func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.Report.RenderTimeoutSec) * time.Second
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 120,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "valoraciones.db",
		},
		Report: ReportConfig{
			CacheTTLSeconds:  24 * 3600,
			RenderTimeoutSec: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	envInt("VALUATION_PORT", &cfg.Server.Port)
	envInt("VALUATION_METRICS_PORT", &cfg.Server.MetricsPort)
	envString("VALUATION_ADMIN_TOKEN", &cfg.Server.AdminToken)
	if v := os.Getenv("VALUATION_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.CORSOrigins = origins
	}
	envInt("VALUATION_RATE_LIMIT_PER_MINUTE", &cfg.Server.RateLimitPerMinute)

	envString("VALUATION_STORE_DRIVER", &cfg.Store.Driver)
	envString("VALUATION_STORE_PATH", &cfg.Store.Path)
	envString("VALUATION_DATABASE_URL", &cfg.Store.URL)

	envString("VALUATION_HERMES_URL", &cfg.Hermes.URL)

	envString("VALUATION_CHROME_PATH", &cfg.Report.ChromePath)
	envString("VALUATION_REDIS_URL", &cfg.Report.RedisURL)
	envInt("VALUATION_REPORT_CACHE_TTL_SECONDS", &cfg.Report.CacheTTLSeconds)
	envInt("VALUATION_RENDER_TIMEOUT_SECONDS", &cfg.Report.RenderTimeoutSec)

	envString("VALUATION_REFERENCE_PATH", &cfg.Engine.ReferencePath)

	envString("VALUATION_LOG_LEVEL", &cfg.Logging.Level)
	envString("VALUATION_LOG_FORMAT", &cfg.Logging.Format)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
