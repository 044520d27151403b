package domain

import "context"

// Generator sends a single text prompt to a generative model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
