// Package retrieval scores the corpus against a candidate's skills by cosine
// similarity and returns the bounded, descending candidate window.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	"github.com/kailas-cloud/jobmatch/internal/domain/profile"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
)

// Defaults used when Options fields are zero.
const (
	DefaultThreshold    = 0.30
	DefaultWindow       = 100
	DefaultEmbedTimeout = 30 * time.Second
)

// Options tunes retrieval. Scores must be strictly greater than Threshold.
type Options struct {
	Threshold float64
	Window    int
	// EmbedTimeout bounds the query embedding call.
	EmbedTimeout time.Duration
}

// Service is the similarity retriever.
type Service struct {
	corpus Corpus
	embed  Embedder
	opts   Options
}

// New creates a retrieval service. Zero Window and EmbedTimeout fall back
// to their defaults.
func New(corpus Corpus, embed Embedder, opts Options) *Service {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = DefaultEmbedTimeout
	}
	return &Service{corpus: corpus, embed: embed, opts: opts}
}

// Retrieve normalizes skills, embeds them as one query and ranks the corpus.
// ErrEmptyQuery is returned when no usable skill remains.
func (s *Service) Retrieve(ctx context.Context, skills []string) ([]match.Candidate, error) {
	skills = profile.NormalizeSkills(skills)
	if len(skills) == 0 {
		return nil, domain.ErrEmptyQuery
	}

	res, err := s.embedQuery(ctx, profile.QueryText(skills))
	if err != nil {
		return nil, err
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	if err := domain.ValidateVector(res.Embedding); err != nil {
		return nil, fmt.Errorf("query vector: %v: %w", err, domain.ErrEmbeddingProviderError)
	}

	return Rank(ctx, res.Embedding, s.corpus.Postings(), s.opts)
}

func (s *Service) embedQuery(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	ectx, cancel := context.WithTimeout(ctx, s.opts.EmbedTimeout)
	defer cancel()

	res, err := s.embed.Embed(ectx, text)
	if err != nil {
		// Our own deadline is a provider failure; a cancelled caller is not.
		if ctx.Err() == nil && errors.Is(ectx.Err(), context.DeadlineExceeded) {
			return res, fmt.Errorf("embed query: no reply within %s: %w",
				s.opts.EmbedTimeout, domain.ErrEmbeddingProviderError)
		}
		return res, fmt.Errorf("embed query: %w", err)
	}
	return res, nil
}

// Rank scores every indexed posting against query. Unindexed postings are
// ignored, corrupt ones are skipped and counted, and a posting whose vector
// length differs from the query aborts the ranking with a DimMismatchError.
func Rank(ctx context.Context, query []float32, postings []posting.Posting, opts Options) ([]match.Candidate, error) {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	log := logger.FromContext(ctx)

	candidates := make([]match.Candidate, 0, min(len(postings), opts.Window))
	var corrupt int
	for i := range postings {
		p := &postings[i]
		switch p.VectorState() {
		case posting.VectorAbsent:
			continue
		case posting.VectorCorrupt:
			corrupt++
			log.Warn("Skipping posting with corrupt embedding",
				zap.Int64("job_id", p.ID),
				zap.Error(p.EmbeddingErr),
			)
			continue
		}

		if len(p.Embedding) != len(query) {
			return nil, &domain.DimMismatchError{JobID: p.ID, Query: len(query), Stored: len(p.Embedding)}
		}

		score := domain.Cosine(query, p.Embedding)
		if score > opts.Threshold {
			candidates = append(candidates, match.NewCandidate(p.ID, score))
		}
	}
	if corrupt > 0 {
		metrics.SkippedPostingsTotal.WithLabelValues("corrupt_vector").Add(float64(corrupt))
	}

	// Stable on corpus (id) order so equal scores stay deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score() > candidates[j].Score()
	})
	if len(candidates) > opts.Window {
		candidates = candidates[:opts.Window]
	}
	return candidates, nil
}
