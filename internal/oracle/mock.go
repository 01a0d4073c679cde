package oracle

import (
	"context"
	"fmt"
	"strings"
)

// MockClient provides deterministic local completions when no real oracle is
// configured. Tests and local development override Respond for scripted
// behavior.
type MockClient struct {
	Respond func(prompt string, maxTokens int) (string, error)
}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if c.Respond != nil {
		return c.Respond(prompt, maxTokens)
	}

	first := prompt
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return fmt.Sprintf("mock completion for: %s", strings.TrimSpace(first)), nil
}
