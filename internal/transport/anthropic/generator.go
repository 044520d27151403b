package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

const defaultMaxTokens = 4096

// Config holds the Anthropic provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Generator implements domain.Generator on the Anthropic Messages API.
type Generator struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator creates a Generator. SDK retries are disabled; callers bound the call by context.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api_key is required for anthropic")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required for anthropic")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := anthropic.NewClient(opts...)

	return &Generator{
		client:    &client,
		model:     cfg.Model,
		maxTokens: int64(maxTokens),
	}, nil
}

// Generate implements domain.Generator. Text blocks are concatenated in order.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %v: %w", err, domain.ErrJudgeUnavailable)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }
