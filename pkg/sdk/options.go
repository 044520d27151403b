package jobmatch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver      string // "valkey", "redis" or "postgres"
	addrs       []string
	password    string
	databaseURL string
	keyPrefix   string

	embedder  Embedder
	generator Generator
	provider  string
	model     string

	threshold    *float64
	window       int
	topN         int
	maxJudgments int
	judgeTimeout time.Duration
	embedTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to load postings from a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to load postings from a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithPostgres configures the client to load postings from the job_postings table.
func WithPostgres(databaseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "postgres"
		c.databaseURL = databaseURL
	})
}

// WithKeyPrefix namespaces posting keys in Redis/Valkey. Default: "jobmatch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator sets the generative model used to judge matches and read
// resumes. Without it every run reports the judge as failed and resume
// extraction yields nothing.
func WithGenerator(g Generator, provider, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
		c.provider = provider
		c.model = model
	})
}

// WithThreshold sets the minimum cosine similarity for a candidate. Default: 0.30.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = &t
	})
}

// WithCandidateWindow caps how many candidates are sent to the judge. Default: 100.
func WithCandidateWindow(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.window = n
	})
}

// WithDefaultTopN sets the match count used when a call passes topN <= 0. Default: 10.
func WithDefaultTopN(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topN = n
	})
}

// WithJudge tunes the judge. Zero values keep the defaults (15 judgments, 60s).
func WithJudge(maxJudgments int, timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxJudgments = maxJudgments
		c.judgeTimeout = timeout
	})
}

// WithEmbedTimeout caps how long a query embedding may take. Default: 30s.
func WithEmbedTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedTimeout = d
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (call results, durations, judge
// status and match counts per run) on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
