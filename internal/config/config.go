package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	LogFormat string
	LogLevel  string

	OtelEndpoint      string
	OtelExporter      string
	OtelSamplingRatio float64
	MetricsNamespace  string

	IdempotencyTTL time.Duration
	RateLimit      string

	RatesProviderURL string
	RatesCacheTTL    time.Duration
	RatesRefreshCron string
	RatesLockTTL     time.Duration

	QuotationDefaultPerPage int
	QuotationMaxPerPage     int

	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),

		OtelEndpoint:      k.String("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporter:      valueOrDefault(k.String("OTEL_TRACES_EXPORTER"), "otlp"),
		OtelSamplingRatio: floatOrDefault(k.Float64("OTEL_SAMPLING_RATIO"), 1.0),
		MetricsNamespace:  valueOrDefault(k.String("METRICS_NAMESPACE"), "freight"),

		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		RateLimit:      valueOrDefault(k.String("RATE_LIMIT"), "300-M"),

		RatesProviderURL: k.String("RATES_PROVIDER_URL"),
		RatesCacheTTL:    parseDuration(k.String("RATES_CACHE_TTL"), "1h"),
		RatesRefreshCron: valueOrDefault(k.String("RATES_REFRESH_CRON"), "0 6 * * *"),
		RatesLockTTL:     parseDuration(k.String("RATES_LOCK_TTL"), "2m"),

		QuotationDefaultPerPage: intOrDefault(k.Int("QUOTATION_DEFAULT_PER_PAGE"), 20),
		QuotationMaxPerPage:     intOrDefault(k.Int("QUOTATION_MAX_PER_PAGE"), 100),

		WorkerConcurrency: intOrDefault(k.Int("WORKER_CONCURRENCY"), 5),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func intOrDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func floatOrDefault(value, fallback float64) float64 {
	if value > 0 {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
