package jobmatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/db"
	dbPostgres "github.com/kailas-cloud/jobmatch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/jobmatch/internal/db/redis"
	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/profile"
	"github.com/kailas-cloud/jobmatch/internal/repository/corpus"
	postingrepo "github.com/kailas-cloud/jobmatch/internal/repository/posting"
	healthuc "github.com/kailas-cloud/jobmatch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/jobmatch/internal/usecase/ingest"
	keyworduc "github.com/kailas-cloud/jobmatch/internal/usecase/keyword"
	matchinguc "github.com/kailas-cloud/jobmatch/internal/usecase/matching"
	"github.com/kailas-cloud/jobmatch/internal/usecase/rerank"
	resumeuc "github.com/kailas-cloud/jobmatch/internal/usecase/resume"
	"github.com/kailas-cloud/jobmatch/internal/usecase/retrieval"
	trenduc "github.com/kailas-cloud/jobmatch/internal/usecase/trend"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "jobmatch:"
)

// backend is the connection lifecycle shared by the store drivers.
type backend interface {
	db.Pinger
	Close()
}

// Client is the jobmatch entry point. It is safe for concurrent use.
type Client struct {
	backend  backend
	postings ingestuc.Store
	embedder domain.Embedder
	cfg      *clientConfig
	obs      *observer

	mu      sync.RWMutex
	matcher *matchinguc.Service
	health  *healthuc.Service
	size    int
}

// New creates a Client, connects to the database and loads the corpus.
// The provided context is used for the readiness check and the initial load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("jobmatch: embedder required (use WithEmbedder)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	b, postings, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := wireClient(ctx, b, postings, cfg, obs)
	if err != nil {
		b.Close()
		return nil, err
	}
	return c, nil
}

func connect(ctx context.Context, cfg *clientConfig) (backend, ingestuc.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, nil, fmt.Errorf("jobmatch: %s address required", cfg.driver)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("jobmatch: create %s store: %w", cfg.driver, err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("jobmatch: database not ready: %w", err)
		}
		return s, postingrepo.New(s, cfg.keyPrefix, zap.NewNop()), nil
	case "postgres":
		s, err := dbPostgres.Connect(ctx, cfg.databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("jobmatch: create postgres store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("jobmatch: database not ready: %w", err)
		}
		return s, postingrepo.NewPostgres(s), nil
	case "":
		return nil, nil, errors.New("jobmatch: database required (use WithValkey, WithRedis or WithPostgres)")
	default:
		return nil, nil, fmt.Errorf("jobmatch: unknown driver %q", cfg.driver)
	}
}

func wireClient(
	ctx context.Context, b backend, postings ingestuc.Store, cfg *clientConfig, obs *observer,
) (*Client, error) {
	c := &Client{
		backend:  b,
		postings: postings,
		embedder: &embedderAdapter{inner: cfg.embedder},
		cfg:      cfg,
		obs:      obs,
	}
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// load snapshots the corpus and swaps in a fresh engine over it.
func (c *Client) load(ctx context.Context) error {
	log := zap.NewNop()
	snap, err := corpus.Load(ctx, c.postings, log)
	if err != nil {
		return fmt.Errorf("jobmatch: %w", err)
	}

	keywords, err := keyworduc.New(c.embedder, keyworduc.Options{})
	if err != nil {
		return fmt.Errorf("jobmatch: keyword extractor: %w", err)
	}

	var gen domain.Generator
	if c.cfg.generator != nil {
		gen = generatorAdapter{inner: c.cfg.generator}
	}

	threshold := retrieval.DefaultThreshold
	if c.cfg.threshold != nil {
		threshold = *c.cfg.threshold
	}

	resume := resumeuc.NewExtractor(gen, c.cfg.provider, c.cfg.model).WithTimeout(c.cfg.judgeTimeout)
	matcher := matchinguc.New(matchinguc.Deps{
		Retriever: retrieval.New(snap, c.embedder, retrieval.Options{
			Threshold:    threshold,
			Window:       c.cfg.window,
			EmbedTimeout: c.cfg.embedTimeout,
		}),
		Judge: rerank.NewJudge(gen, rerank.Options{
			Provider:     c.cfg.provider,
			Model:        c.cfg.model,
			MaxJudgments: c.cfg.maxJudgments,
			Timeout:      c.cfg.judgeTimeout,
		}),
		Corpus:   snap,
		Trends:   trenduc.New(snap, nil),
		Keywords: keywords,
		Resume:   resume,
	}, c.cfg.topN, log)

	c.mu.Lock()
	c.matcher = matcher
	c.health = healthuc.New(c.backend, nil, snap)
	c.size = snap.Len()
	c.mu.Unlock()
	return nil
}

func (c *Client) engine() (*matchinguc.Service, *healthuc.Service) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matcher, c.health
}

// Close releases all resources.
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.call("ping", start, err) }()

	if err = c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Len reports how many postings the loaded corpus holds.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Reload re-reads the corpus from the database. Searches in flight finish
// against the previous snapshot.
func (c *Client) Reload(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.call("reload", start, err) }()

	return c.load(ctx)
}

// Match retrieves and ranks postings for a skill list. topN <= 0 uses the
// client default. The profile is passed to the judge as-is and may be nil.
func (c *Client) Match(
	ctx context.Context, skills []string, prof map[string]any, topN int,
) (report Report, err error) {
	start := time.Now()
	defer func() { c.obs.run("match", start, report, err) }()

	m, _ := c.engine()
	return m.RetrieveAndRank(ctx, profile.Candidate{Skills: skills, Profile: prof}, topN)
}

// SalaryTrend aggregates salary progression and locations per title.
// A title with no postings maps to an empty Trend.
func (c *Client) SalaryTrend(ctx context.Context, titles ...string) (trends map[string]Trend, err error) {
	start := time.Now()
	defer func() { c.obs.call("salary_trend", start, err) }()

	m, _ := c.engine()
	return m.SalaryTrend(ctx, titles)
}

// Keywords ranks the phrases of text by relevance to the whole text.
func (c *Client) Keywords(ctx context.Context, text string, topN int) []Keyword {
	start := time.Now()
	defer func() { c.obs.call("keywords", start, nil) }()

	m, _ := c.engine()
	return m.KeywordFrequencies(ctx, text, topN)
}

// ProcessResume extracts skills and profile from resume text and runs the
// full match, keyword and trend analysis on them.
func (c *Client) ProcessResume(ctx context.Context, text string) (res ResumeResult, err error) {
	start := time.Now()
	defer func() { c.obs.run("process_resume", start, res.Report, err) }()

	m, _ := c.engine()
	return m.ProcessResume(ctx, text)
}

// Import upserts postings into the database. Call Reload to serve them.
func (c *Client) Import(ctx context.Context, postings []Posting) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.call("import", start, err) }()

	return ingestuc.New(c.postings, c.embedder, 0, zap.NewNop()).Import(ctx, postings)
}

// IndexMissing embeds postings that have no stored vector. With
// reindexCorrupt it also replaces vectors that fail validation.
func (c *Client) IndexMissing(ctx context.Context, reindexCorrupt bool) (res IndexResult, err error) {
	start := time.Now()
	defer func() { c.obs.call("index_missing", start, err) }()

	return ingestuc.New(c.postings, c.embedder, 0, zap.NewNop()).IndexMissing(ctx, reindexCorrupt)
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder
// and domain.BatchEmbedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	be, ok := a.inner.(BatchEmbedder)
	if !ok {
		return domain.BatchFallback(ctx, a, texts)
	}
	r, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps public Generator to satisfy domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a generatorAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := a.inner.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}
