package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the jobmatch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Judge     JudgeConfig     `yaml:"judge"`
	Matching  MatchingConfig  `yaml:"matching"`
	Keywords  KeywordsConfig  `yaml:"keywords"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds corpus store connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver" validate:"oneof=redis valkey postgres"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	URL              string   `yaml:"url"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds key layout settings for the KV backends.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding endpoint.
type EmbeddingConfig struct {
	Provider   string      `yaml:"provider"`
	APIKey     string      `yaml:"api_key"`
	APIKeyFile string      `yaml:"api_key_file"`
	BaseURL    string      `yaml:"base_url"`
	Model      string      `yaml:"model" validate:"required"`
	Dimensions int         `yaml:"dimensions" validate:"gte=0"`
	TimeoutSec int         `yaml:"timeout_sec" validate:"gte=1"`
	Cache      CacheConfig `yaml:"cache"`
}

// CacheConfig holds embedding cache settings. The cache lives in the KV
// store and is skipped for the postgres driver.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec" validate:"gte=0"`
}

// JudgeConfig holds the generative model used for re-ranking and resume extraction.
type JudgeConfig struct {
	Provider   string `yaml:"provider" validate:"oneof=gemini openai anthropic"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"`
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"gte=1"`
	MaxTokens  int    `yaml:"max_tokens" validate:"gte=0"`
}

// MatchingConfig holds retrieval and re-ranking parameters.
type MatchingConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gte=-1,lte=1"`
	CandidateWindow     int     `yaml:"candidate_window" validate:"gte=1"`
	DefaultTopN         int     `yaml:"default_top_n" validate:"gte=1"`
	MaxJudgments        int     `yaml:"max_judgments" validate:"gte=1"`
}

// KeywordsConfig holds keyword extraction parameters.
type KeywordsConfig struct {
	DefaultTopN   int `yaml:"default_top_n" validate:"gte=1"`
	MaxNgram      int `yaml:"max_ngram" validate:"gte=1,lte=5"`
	MaxCandidates int `yaml:"max_candidates" validate:"gte=1"`
}

// IngestConfig holds indexing settings.
type IngestConfig struct {
	BatchSize int `yaml:"batch_size" validate:"gte=1"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Judge calls run inside the request.
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "jobmatch:"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Judge.Provider == "" {
		c.Judge.Provider = "gemini"
	}
	if c.Judge.TimeoutSec <= 0 {
		c.Judge.TimeoutSec = 60
	}
	if c.Matching.SimilarityThreshold == 0 {
		c.Matching.SimilarityThreshold = 0.30
	}
	if c.Matching.CandidateWindow <= 0 {
		c.Matching.CandidateWindow = 100
	}
	if c.Matching.DefaultTopN <= 0 {
		c.Matching.DefaultTopN = 10
	}
	if c.Matching.MaxJudgments <= 0 {
		c.Matching.MaxJudgments = 15
	}
	if c.Keywords.DefaultTopN <= 0 {
		c.Keywords.DefaultTopN = 25
	}
	if c.Keywords.MaxNgram <= 0 {
		c.Keywords.MaxNgram = 3
	}
	if c.Keywords.MaxCandidates <= 0 {
		c.Keywords.MaxCandidates = 2000
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 64
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q check (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// fieldPath turns "Config.matching.candidate_window" into "matching.candidate_window".
func fieldPath(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
