package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// Generator implements domain.Generator over an OpenAI-compatible chat completion endpoint.
type Generator struct {
	client *openai.Client
	model  string
}

// GeneratorConfig holds the chat provider settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Model == "" {
		return nil, errors.New("model is required for openai chat")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Generate sends prompt as a single user message and returns the first choice.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %v: %w", err, domain.ErrJudgeUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }
