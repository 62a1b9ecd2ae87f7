// internal/expansion/expansion.go

// Package expansion rewrites search queries with an LLM before they reach the sources.
package expansion

import (
	"context"
	"errors"
	"strings"
	"time"

	"sustainatrend-search/internal/common/config"
	"sustainatrend-search/internal/common/logger"
)

const (
	systemPrompt = "You expand ESG and sustainability search queries. Reply with the original query " +
		"followed by up to three closely related terms on a single line. No explanations, no quotes, no lists."

	defaultMaxTokens = 64
	defaultTimeout   = 5 * time.Second
)

var (
	ErrEmptyExpansion   = errors.New("expansion returned no text")
	ErrExpansionRequest = errors.New("expansion request failed")
)

// Expander returns a rewritten query. Implementations never return an empty string with a nil error.
type Expander interface {
	Expand(ctx context.Context, query string) (string, error)
}

// Passthrough returns the query unchanged.
type Passthrough struct{}

func (Passthrough) Expand(_ context.Context, query string) (string, error) {
	return query, nil
}

// New picks the provider named in cfg. A provider without an API key degrades to Passthrough.
func New(cfg config.ExpansionConfig, log logger.Logger) Expander {
	provider := strings.ToLower(cfg.Provider)
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	switch provider {
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey != "" {
			return NewOpenAI(OpenAIConfig{
				APIKey:    cfg.OpenAI.APIKey,
				BaseURL:   cfg.OpenAI.BaseURL,
				Model:     cfg.OpenAI.Model,
				MaxTokens: maxTokens,
				Timeout:   timeout,
			})
		}
	case config.ProviderAnthropic:
		if cfg.Anthropic.APIKey != "" {
			return NewAnthropic(AnthropicConfig{
				APIKey:    cfg.Anthropic.APIKey,
				BaseURL:   cfg.Anthropic.BaseURL,
				Model:     cfg.Anthropic.Model,
				MaxTokens: maxTokens,
				Timeout:   timeout,
			})
		}
	case config.ProviderNone, "":
		return Passthrough{}
	}

	log.Warn("query expansion disabled", map[string]interface{}{
		"provider": provider,
		"reason":   "missing api key or unknown provider",
	})
	return Passthrough{}
}

// cleanExpansion collapses a model reply to a single trimmed line.
func cleanExpansion(reply string) (string, error) {
	line := strings.Join(strings.Fields(reply), " ")
	line = strings.Trim(line, "\"'`")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrEmptyExpansion
	}
	return line, nil
}
