package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client is a single-shot text-completion oracle. Implementations must treat
// the prompt as opaque and return the completion text verbatim.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Config controls client construction.
type Config struct {
	Mode    string
	APIKey  string
	APIURL  string
	Timeout time.Duration
}

// NewClient builds a completion client for the configured mode.
func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	switch mode {
	case "", "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("gemini oracle requires an API key")
		}
		return NewGeminiClient(cfg.APIURL, cfg.APIKey, cfg.Timeout), nil
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported oracle mode %q", cfg.Mode)
	}
}
