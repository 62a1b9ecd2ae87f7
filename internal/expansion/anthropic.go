// internal/expansion/anthropic.go
package expansion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type AnthropicExpander struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

func NewAnthropic(cfg AnthropicConfig) *AnthropicExpander {
	// Retries are left to the caller's timeout budget.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicExpander{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.Timeout,
	}
}

func (e *AnthropicExpander) Expand(ctx context.Context, query string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: anthropic.Float(0.2),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: anthropic status %d: %w", ErrExpansionRequest, apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("%w: %w", ErrExpansionRequest, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
			text.WriteString(" ")
		}
	}
	return cleanExpansion(text.String())
}
