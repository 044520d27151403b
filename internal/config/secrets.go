package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadSecret resolves a secret from an inline value, then a file, then an
// environment variable. An unset secret returns "" without error.
func ReadSecret(inline, file, envVar string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if file != "" {
		data, err := os.ReadFile(filepath.Clean(file))
		if err != nil {
			return "", fmt.Errorf("read secret file %s: %w", file, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if envVar != "" {
		return os.Getenv(envVar), nil
	}
	return "", nil
}

// EmbeddingAPIKey returns the embedding provider key.
func (c *Config) EmbeddingAPIKey() (string, error) {
	return ReadSecret(c.Embedding.APIKey, c.Embedding.APIKeyFile, "EMBEDDING_API_KEY")
}

// JudgeAPIKey returns the judge provider key, falling back to the provider's
// conventional environment variable.
func (c *Config) JudgeAPIKey() (string, error) {
	return ReadSecret(c.Judge.APIKey, c.Judge.APIKeyFile, judgeKeyEnv[c.Judge.Provider])
}

var judgeKeyEnv = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}
