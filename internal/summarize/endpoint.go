package summarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/meetmind/meetmind/internal/config"
)

// Endpoint is a remote text model that answers one prompt at a time.
type Endpoint interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrNoAPIKey is returned by NewEndpoint when no key is configured.
var ErrNoAPIKey = errors.New("no API key configured (set MEETMIND_API_KEY)")

// NewEndpoint picks the endpoint implementation for cfg.Provider.
func NewEndpoint(cfg config.SummarizeConfig) (Endpoint, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiEndpoint(cfg.Endpoint, cfg.APIKey, cfg.Timeout), nil
	case "openai":
		base := cfg.Endpoint
		if base == config.DefaultGeminiEndpoint {
			base = ""
		}
		return NewOpenAIEndpoint(cfg.APIKey, base, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
