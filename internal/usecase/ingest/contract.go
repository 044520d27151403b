package ingest

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// Store reads and writes postings in the configured backend.
type Store interface {
	LoadPostings(ctx context.Context) ([]posting.Posting, error)
	Upsert(ctx context.Context, postings []posting.Posting) error
	SetEmbeddings(ctx context.Context, vectors map[int64][]float32) error
}
