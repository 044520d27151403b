// Package ingest imports postings and writes their document embeddings.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// DefaultBatchSize is the number of postings embedded and written together.
const DefaultBatchSize = 64

// Result summarizes an indexing pass.
type Result struct {
	Scanned   int `json:"scanned"`
	Embedded  int `json:"embedded"`
	Corrupt   int `json:"corrupt"`
	Reindexed int `json:"reindexed"`
}

// Service indexes postings that have no usable vector.
type Service struct {
	store     Store
	embed     domain.Embedder
	batchSize int
	logger    *zap.Logger
}

// New creates an ingest service.
func New(store Store, embed domain.Embedder, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{store: store, embed: embed, batchSize: batchSize, logger: logger}
}

// IndexMissing embeds every posting without a vector. Corrupt vectors are
// replaced only when reindexCorrupt is set.
func (s *Service) IndexMissing(ctx context.Context, reindexCorrupt bool) (Result, error) {
	postings, err := s.store.LoadPostings(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load postings: %w", err)
	}

	res := Result{Scanned: len(postings)}
	todo := make([]*posting.Posting, 0)
	for i := range postings {
		p := &postings[i]
		switch p.VectorState() {
		case posting.VectorAbsent:
			todo = append(todo, p)
		case posting.VectorCorrupt:
			res.Corrupt++
			if reindexCorrupt {
				todo = append(todo, p)
				res.Reindexed++
			}
		}
	}

	for start := 0; start < len(todo); start += s.batchSize {
		batch := todo[start:min(start+s.batchSize, len(todo))]
		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.EmbeddingText()
		}

		vecs, err := domain.EmbedAll(ctx, s.embed, texts)
		if err != nil {
			return res, fmt.Errorf("embed batch at %d: %w", start, err)
		}

		update := make(map[int64][]float32, len(batch))
		for i, p := range batch {
			if err := domain.ValidateVector(vecs[i]); err != nil {
				return res, fmt.Errorf("posting %d: %v: %w", p.ID, err, domain.ErrEmbeddingProviderError)
			}
			update[p.ID] = vecs[i]
		}
		if err := s.store.SetEmbeddings(ctx, update); err != nil {
			return res, fmt.Errorf("store embeddings: %w", err)
		}
		res.Embedded += len(batch)

		s.logger.Info("Indexed batch",
			zap.Int("done", res.Embedded),
			zap.Int("total", len(todo)),
		)
	}

	if res.Corrupt > 0 && !reindexCorrupt {
		s.logger.Warn("Postings with corrupt vectors left untouched",
			zap.Int("corrupt", res.Corrupt),
		)
	}
	return res, nil
}

// Import upserts postings. Imported postings carry no vector, so they are
// picked up by the next IndexMissing pass.
func (s *Service) Import(ctx context.Context, postings []posting.Posting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}
	if err := s.store.Upsert(ctx, postings); err != nil {
		return 0, fmt.Errorf("upsert postings: %w", err)
	}
	s.logger.Info("Imported postings", zap.Int("count", len(postings)))
	return len(postings), nil
}

// ReadPostings decodes a JSON array of postings. Postings without an id
// are rejected.
func ReadPostings(r io.Reader) ([]posting.Posting, error) {
	var out []posting.Posting
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSchema, err)
	}
	for i := range out {
		if out[i].ID == 0 {
			return nil, fmt.Errorf("%w: posting %d has no jobId", domain.ErrInvalidSchema, i)
		}
	}
	return out, nil
}
