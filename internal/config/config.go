package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains all runtime settings for the member gateway service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	CommunityName string
	ContentFile   string

	OracleMode    string
	GeminiAPIKey  string
	GeminiAPIURL  string
	OracleTimeout time.Duration

	DatabaseURL string

	// SessionIdleTimeout evicts sessions idle longer than this. Zero disables
	// eviction entirely; idle sessions then live for the process lifetime.
	SessionIdleTimeout time.Duration
}

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// Load reads environment variables (after a best-effort .env load) and
// applies safe defaults.
func Load() (Config, error) {
	// Local development keeps credentials in a .env file; missing file is fine.
	_ = godotenv.Load()

	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8000"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "membergate"),
		CommunityName:      envOrDefault("APP_COMMUNITY_NAME", "EO Goa"),
		ContentFile:        envOrDefault("APP_CONTENT_FILE", "content.md"),
		OracleMode:         envOrDefault("ORACLE_MODE", "gemini"),
		GeminiAPIKey:       trimmedEnv("GEMINI_API_KEY"),
		GeminiAPIURL:       envOrDefault("GEMINI_API_URL", defaultGeminiURL),
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
		ShutdownTimeout:    15 * time.Second,
		OracleTimeout:      30 * time.Second,
		SessionIdleTimeout: 0,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OracleTimeout, err = durationFromEnv("ORACLE_TIMEOUT", cfg.OracleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionIdleTimeout, err = durationFromEnv("SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", false)
	if err != nil {
		return Config{}, err
	}

	cfg.OracleMode = strings.ToLower(strings.TrimSpace(cfg.OracleMode))
	switch cfg.OracleMode {
	case "gemini", "mock":
	default:
		return Config{}, fmt.Errorf("ORACLE_MODE must be gemini or mock, got %q", cfg.OracleMode)
	}
	if cfg.OracleMode == "gemini" && cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is required when ORACLE_MODE=gemini")
	}
	if cfg.OracleTimeout <= 0 {
		return Config{}, fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	if cfg.SessionIdleTimeout < 0 {
		return Config{}, fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative")
	}
	if cfg.SessionIdleTimeout > 0 && cfg.SessionIdleTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("SESSION_IDLE_TIMEOUT must be at least 5s when set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
