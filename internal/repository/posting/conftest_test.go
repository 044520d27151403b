package posting

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/db"
	"github.com/kailas-cloud/jobmatch/internal/db/postgres"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetMultiFn func(ctx context.Context, keys []string) ([][]byte, error)
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

// mockPGStore implements pgStore for tests.
type mockPGStore struct {
	rows         []postgres.Row
	listErr      error
	upserted     []postgres.Row
	embeddings   map[int64][]float32
	setEmbedding func(id int64, vec []float32) error
}

func (m *mockPGStore) ListPostings(_ context.Context) ([]postgres.Row, error) {
	return m.rows, m.listErr
}

func (m *mockPGStore) UpsertPosting(_ context.Context, r postgres.Row) error {
	m.upserted = append(m.upserted, r)
	return nil
}

func (m *mockPGStore) SetEmbedding(_ context.Context, id int64, vec []float32) error {
	if m.setEmbedding != nil {
		return m.setEmbedding(id, vec)
	}
	if m.embeddings == nil {
		m.embeddings = make(map[int64][]float32)
	}
	m.embeddings[id] = vec
	return nil
}
