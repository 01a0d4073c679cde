package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ORACLE_MODE", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8000")
	}
	if cfg.ContentFile != "content.md" {
		t.Fatalf("ContentFile = %q, want %q", cfg.ContentFile, "content.md")
	}
	if cfg.OracleTimeout != 30*time.Second {
		t.Fatalf("OracleTimeout = %v, want 30s", cfg.OracleTimeout)
	}
	if cfg.SessionIdleTimeout != 0 {
		t.Fatalf("SessionIdleTimeout = %v, want 0 (disabled)", cfg.SessionIdleTimeout)
	}
}

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("ORACLE_MODE", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for missing GEMINI_API_KEY")
	}
}

func TestLoadRejectsUnknownOracleMode(t *testing.T) {
	t.Setenv("ORACLE_MODE", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for unknown oracle mode")
	}
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("ORACLE_MODE", "mock")
	t.Setenv("ORACLE_TIMEOUT", "5s")
	t.Setenv("SESSION_IDLE_TIMEOUT", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OracleTimeout != 5*time.Second {
		t.Fatalf("OracleTimeout = %v, want 5s", cfg.OracleTimeout)
	}
	if cfg.SessionIdleTimeout != 10*time.Minute {
		t.Fatalf("SessionIdleTimeout = %v, want 10m", cfg.SessionIdleTimeout)
	}
}

func TestLoadRejectsTinyIdleTimeout(t *testing.T) {
	t.Setenv("ORACLE_MODE", "mock")
	t.Setenv("SESSION_IDLE_TIMEOUT", "500ms")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for sub-5s idle timeout")
	}
}
