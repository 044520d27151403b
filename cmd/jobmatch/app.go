package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/config"
	"github.com/kailas-cloud/jobmatch/internal/db"
	dbPostgres "github.com/kailas-cloud/jobmatch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/jobmatch/internal/db/redis"
	"github.com/kailas-cloud/jobmatch/internal/domain"
	logpkg "github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
	"github.com/kailas-cloud/jobmatch/internal/repository/corpus"
	"github.com/kailas-cloud/jobmatch/internal/repository/embcache"
	postingrepo "github.com/kailas-cloud/jobmatch/internal/repository/posting"
	anthropicGen "github.com/kailas-cloud/jobmatch/internal/transport/anthropic"
	geminiGen "github.com/kailas-cloud/jobmatch/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/jobmatch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/jobmatch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/jobmatch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/jobmatch/internal/usecase/ingest"
	keyworduc "github.com/kailas-cloud/jobmatch/internal/usecase/keyword"
	matchinguc "github.com/kailas-cloud/jobmatch/internal/usecase/matching"
	"github.com/kailas-cloud/jobmatch/internal/usecase/rerank"
	resumeuc "github.com/kailas-cloud/jobmatch/internal/usecase/resume"
	"github.com/kailas-cloud/jobmatch/internal/usecase/retrieval"
	trenduc "github.com/kailas-cloud/jobmatch/internal/usecase/trend"
)

// backend is the lifecycle surface shared by the store drivers.
type backend interface {
	db.Pinger
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// app is the composition root shared by every subcommand.
type app struct {
	cfg      config.Config
	env      string
	logger   *zap.Logger
	backend  backend
	postings ingestuc.Store
	embedder domain.Embedder
	// cache is nil for postgres, which has no KV surface.
	cache db.KVStore
}

// newApp loads config, connects the store and builds the embedder chain.
func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchMetrics()
	metrics.RegisterHTTPMetrics()

	a := &app{cfg: cfg, env: env, logger: logger}
	if err := a.connect(ctx); err != nil {
		return nil, err
	}

	embedder, err := a.buildEmbedder()
	if err != nil {
		a.close()
		return nil, err
	}
	a.embedder = embedder
	return a, nil
}

func (a *app) connect(ctx context.Context) error {
	switch a.cfg.Database.Driver {
	case "redis", "valkey":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    a.cfg.Database.Addrs,
			Username: a.cfg.Database.Username,
			Password: a.cfg.Database.Password,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s store: %w", a.cfg.Database.Driver, err)
		}
		a.backend = store
		a.cache = store
		a.postings = postingrepo.New(store, a.cfg.Storage.KeyPrefix, a.logger)
	case "postgres":
		store, err := dbPostgres.Connect(ctx, a.cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to create postgres store: %w", err)
		}
		a.backend = store
		a.postings = postingrepo.NewPostgres(store)
	default:
		return fmt.Errorf("unknown database driver %q", a.cfg.Database.Driver)
	}

	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := a.backend.WaitForReady(ctx, timeout); err != nil {
		a.backend.Close()
		return fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to database", zap.String("driver", a.cfg.Database.Driver))
	return nil
}

func (a *app) close() {
	if a.backend != nil {
		a.backend.Close()
	}
	_ = a.logger.Sync()
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func (a *app) buildEmbedder() (domain.Embedder, error) {
	ec := a.cfg.Embedding
	apiKey, err := a.cfg.EmbeddingAPIKey()
	if err != nil {
		return nil, fmt.Errorf("embedding api key: %w", err)
	}

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     apiKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Timeout:    time.Duration(ec.TimeoutSec) * time.Second,
		Logger:     a.logger,
	})

	var embedder domain.Embedder = base
	if ec.Cache.Enabled && a.cache != nil {
		embedder = embcache.New(base, a.cache, embcache.Options{
			KeyPrefix: a.cfg.Storage.KeyPrefix,
			Model:     ec.Model,
			TTL:       time.Duration(ec.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, a.logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, a.logger), nil
}

// buildGenerator returns the configured judge model. A provider that cannot
// be built yields nil, which makes every judge call report "failed".
func (a *app) buildGenerator(ctx context.Context) domain.Generator {
	jc := a.cfg.Judge
	log := logpkg.WithCommonFields(a.logger, jc.Provider, jc.Model)

	apiKey, err := a.cfg.JudgeAPIKey()
	if err != nil {
		log.Warn("Judge disabled", zap.Error(err))
		return nil
	}

	var gen domain.Generator
	switch jc.Provider {
	case "gemini":
		g, gerr := geminiGen.NewGenerator(ctx, apiKey, jc.Model)
		gen, err = g, gerr
	case "openai":
		g, gerr := openaiTransport.NewGenerator(openaiTransport.GeneratorConfig{
			APIKey:  apiKey,
			BaseURL: jc.BaseURL,
			Model:   jc.Model,
		})
		gen, err = g, gerr
	case "anthropic":
		g, gerr := anthropicGen.NewGenerator(anthropicGen.Config{
			APIKey:    apiKey,
			BaseURL:   jc.BaseURL,
			Model:     jc.Model,
			MaxTokens: jc.MaxTokens,
		})
		gen, err = g, gerr
	default:
		err = fmt.Errorf("unknown judge provider %q", jc.Provider)
	}
	if err != nil {
		log.Warn("Judge disabled", zap.Error(err))
		return nil
	}
	log.Info("Judge ready")
	return gen
}

// engine is the loaded matching surface.
type engine struct {
	snapshot *corpus.Snapshot
	matcher  *matchinguc.Service
	health   *healthuc.Service
}

// loadEngine snapshots the corpus and wires the matching services over it.
func (a *app) loadEngine(ctx context.Context) (*engine, error) {
	snap, err := corpus.Load(ctx, a.postings, a.logger)
	if err != nil {
		return nil, err
	}

	keywords, err := keyworduc.New(a.embedder, keyworduc.Options{
		TopN:          a.cfg.Keywords.DefaultTopN,
		MaxNgram:      a.cfg.Keywords.MaxNgram,
		MaxCandidates: a.cfg.Keywords.MaxCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("keyword extractor: %w", err)
	}

	gen := a.buildGenerator(ctx)
	judge := rerank.NewJudge(gen, rerank.Options{
		Provider:     a.cfg.Judge.Provider,
		Model:        a.cfg.Judge.Model,
		MaxJudgments: a.cfg.Matching.MaxJudgments,
		Timeout:      time.Duration(a.cfg.Judge.TimeoutSec) * time.Second,
	})

	resume := resumeuc.NewExtractor(gen, a.cfg.Judge.Provider, a.cfg.Judge.Model).
		WithTimeout(time.Duration(a.cfg.Judge.TimeoutSec) * time.Second)

	matcher := matchinguc.New(matchinguc.Deps{
		Retriever: retrieval.New(snap, a.embedder, retrieval.Options{
			Threshold:    a.cfg.Matching.SimilarityThreshold,
			Window:       a.cfg.Matching.CandidateWindow,
			EmbedTimeout: time.Duration(a.cfg.Embedding.TimeoutSec) * time.Second,
		}),
		Judge:    judge,
		Corpus:   snap,
		Trends:   trenduc.New(snap, nil),
		Keywords: keywords,
		Resume:   resume,
	}, a.cfg.Matching.DefaultTopN, a.logger)

	return &engine{
		snapshot: snap,
		matcher:  matcher,
		health:   healthuc.New(a.backend, newEmbeddingHealthChecker(a.embedder), snap),
	}, nil
}

func (a *app) ingest() *ingestuc.Service {
	return ingestuc.New(a.postings, a.embedder, a.cfg.Ingest.BatchSize, a.logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
