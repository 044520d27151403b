package keyword

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// --- Mocks ---

type mockBatchEmbedder struct {
	batchFn    func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
	batchCalls int
}

func (m *mockBatchEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New("single embed not expected")
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	return m.batchFn(ctx, texts)
}

// topicEmbedder puts the document at [1, 0]; phrases mentioning kubernetes
// score 1, phrases mentioning go score 0.6 and everything else 0.
func topicEmbedder() *mockBatchEmbedder {
	return &mockBatchEmbedder{batchFn: func(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
		out := make([][]float32, len(texts))
		out[0] = []float32{1, 0}
		for i, s := range texts[1:] {
			switch {
			case strings.Contains(s, "kubernetes"):
				out[i+1] = []float32{1, 0}
			case strings.Contains(s, "go"):
				out[i+1] = []float32{3, 4}
			default:
				out[i+1] = []float32{0, 1}
			}
		}
		return domain.BatchEmbeddingResult{Embeddings: out}, nil
	}}
}

func newTestExtractor(t *testing.T, e domain.Embedder, opts Options) *Extractor {
	t.Helper()
	x, err := New(e, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return x
}

func TestCandidates(t *testing.T) {
	x := newTestExtractor(t, nil, Options{})

	got := x.Candidates("Senior Go developer, and the Kubernetes 2024 team")
	want := []string{
		"senior", "senior go", "senior go developer",
		"go", "go developer",
		"developer",
		"kubernetes",
		"team",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() =\n%q\nwant\n%q", got, want)
	}
}

func TestCandidates_Dedup(t *testing.T) {
	x := newTestExtractor(t, nil, Options{MaxNgram: 2})
	got := x.Candidates("data pipelines. data pipelines!")
	want := []string{"data", "data pipelines", "pipelines"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Candidates() = %q, want %q", got, want)
	}
}

func TestCandidates_Cap(t *testing.T) {
	x := newTestExtractor(t, nil, Options{MaxCandidates: 4})
	if got := x.Candidates("alpha beta gamma delta epsilon"); len(got) != 4 {
		t.Errorf("got %d candidates, want 4", len(got))
	}
}

func TestExtract_RanksInOneBatch(t *testing.T) {
	emb := topicEmbedder()
	x := newTestExtractor(t, emb, Options{})

	got := x.Extract(context.Background(), "Kubernetes operator in Go", 3)
	if emb.batchCalls != 1 {
		t.Errorf("batch calls = %d, want 1", emb.batchCalls)
	}
	if len(got) != 3 {
		t.Fatalf("got %d weights, want 3", len(got))
	}
	// Ties at 100 are ordered by phrase.
	if got[0].Text != "kubernetes" || got[1].Text != "kubernetes operator" || got[0].Value != 100 {
		t.Errorf("top = %+v", got[:2])
	}
	if got[2].Text != "go" || got[2].Value != 60 {
		t.Errorf("third = %+v", got[2])
	}
}

func TestExtract_DefaultTopN(t *testing.T) {
	x := newTestExtractor(t, topicEmbedder(), Options{TopN: 2})
	if got := x.Extract(context.Background(), "one two three four", 0); len(got) != 2 {
		t.Errorf("got %d weights, want configured default 2", len(got))
	}
}

func TestExtract_EmptyAndFailures(t *testing.T) {
	failing := &mockBatchEmbedder{batchFn: func(context.Context, []string) (domain.BatchEmbeddingResult, error) {
		return domain.BatchEmbeddingResult{}, domain.ErrEmbeddingProviderError
	}}
	short := &mockBatchEmbedder{batchFn: func(context.Context, []string) (domain.BatchEmbeddingResult, error) {
		return domain.BatchEmbeddingResult{Embeddings: [][]float32{{1}}}, nil
	}}

	tests := []struct {
		name string
		emb  domain.Embedder
		text string
	}{
		{"empty", topicEmbedder(), ""},
		{"whitespace", topicEmbedder(), "  \n\t "},
		{"only stop words", topicEmbedder(), "the and of"},
		{"provider error", failing, "go developer"},
		{"count mismatch", short, "go developer"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := newTestExtractor(t, tc.emb, Options{}).Extract(context.Background(), tc.text, 5)
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty non-nil slice, got %v", got)
			}
		})
	}
}

func TestWeight(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.999, 99},
		{1.0, 100},
		{-0.3, 0},
		{0.4567, 45},
	}
	for _, tc := range tests {
		if got := weight(tc.in); got != tc.want {
			t.Errorf("weight(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
