// Package posting reads and writes the job posting corpus. Repo stores
// postings as JSON documents in a Redis-compatible server; PGRepo keeps
// them in a PostgreSQL table.
package posting

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/db"
	domposting "github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// fetchBatch bounds a single JSON.GET pipeline.
const fetchBatch = 200

// store is the consumer interface for postings (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
}

// Repo stores postings under <prefix>posting:<id>.
type Repo struct {
	store  store
	prefix string
	logger *zap.Logger
}

// New creates a posting repository.
func New(s store, keyPrefix string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, prefix: keyPrefix, logger: logger}
}

func (r *Repo) key(id int64) string {
	return r.prefix + "posting:" + strconv.FormatInt(id, 10)
}

// LoadPostings returns every stored posting. Undecodable documents are
// skipped and logged; undecodable embeddings are kept on the posting.
func (r *Repo) LoadPostings(ctx context.Context) ([]domposting.Posting, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"posting:*")
	if err != nil {
		return nil, fmt.Errorf("scan postings: %w", err)
	}

	out := make([]domposting.Posting, 0, len(keys))
	for start := 0; start < len(keys); start += fetchBatch {
		end := min(start+fetchBatch, len(keys))
		docs, err := r.store.JSONGetMulti(ctx, keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetch postings: %w", err)
		}
		for i, raw := range docs {
			if raw == nil {
				continue
			}
			p, err := parseJSONDoc(raw)
			if err != nil {
				r.logger.Warn("Skipping undecodable posting",
					zap.String("key", keys[start+i]), zap.Error(err))
				continue
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// Upsert writes full posting documents, including any embedding they carry.
func (r *Repo) Upsert(ctx context.Context, postings []domposting.Posting) error {
	items := make([]db.JSONSetItem, 0, len(postings))
	for i := range postings {
		doc, err := buildJSONDoc(&postings[i])
		if err != nil {
			return fmt.Errorf("posting %d: %w", postings[i].ID, err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal posting %d: %w", postings[i].ID, err)
		}
		items = append(items, db.JSONSetItem{Key: r.key(postings[i].ID), Path: "$", Data: data})
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set postings: %w", err)
	}
	return nil
}

// SetEmbeddings replaces the embedding field of existing documents.
func (r *Repo) SetEmbeddings(ctx context.Context, vectors map[int64][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	items := make([]db.JSONSetItem, 0, len(vectors))
	for id, vec := range vectors {
		data, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("marshal embedding %d: %w", id, err)
		}
		items = append(items, db.JSONSetItem{Key: r.key(id), Path: "$.embedding", Data: data})
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set embeddings: %w", err)
	}
	return nil
}
