package jobmatch

import (
	"context"
	"sync"

	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

// --- Mocks ---

type mockBackend struct {
	pingFn func(ctx context.Context) error
	closed bool
}

func (m *mockBackend) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockBackend) Close() { m.closed = true }

type mockPostings struct {
	mu       sync.Mutex
	postings []posting.Posting
	loadErr  error
	vectors  map[int64][]float32
}

func (m *mockPostings) LoadPostings(_ context.Context) ([]posting.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]posting.Posting, len(m.postings))
	copy(out, m.postings)
	return out, nil
}

func (m *mockPostings) Upsert(_ context.Context, postings []posting.Posting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings = append(m.postings, postings...)
	return nil
}

func (m *mockPostings) SetEmbeddings(_ context.Context, vectors map[int64][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vectors == nil {
		m.vectors = make(map[int64][]float32)
	}
	for id, v := range vectors {
		m.vectors[id] = v
		for i := range m.postings {
			if m.postings[i].ID == id {
				m.postings[i].Embedding = v
			}
		}
	}
	return nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return EmbeddingResult{Embedding: []float32{1, 0}, PromptTokens: 1, TotalTokens: 1}, nil
}

type mockBatchEmbedder struct {
	mockEmbedder
	calls int
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "[]", nil
}
