package jobmatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
)

func samplePostings() []posting.Posting {
	return []posting.Posting{
		{
			ID: 1, Title: "Backend Engineer", Skills: []string{"go"},
			Experience: "2 to 4 Years", SalaryRange: "$60K-$90K", Location: "Austin, TX",
			Embedding: []float32{1, 0},
		},
		{
			ID: 2, Title: "Florist", Skills: []string{"flowers"},
			Experience: "1 to 2 Years", SalaryRange: "$30K-$40K", Location: "Boston, MA",
			Embedding: []float32{0, 1},
		},
	}
}

func testClient(
	t *testing.T, store *mockPostings, emb Embedder, gen Generator, opts ...Option,
) (*Client, *mockBackend) {
	t.Helper()
	cfg := &clientConfig{keyPrefix: defaultKeyPrefix, embedder: emb, provider: "test", model: "m"}
	if gen != nil {
		cfg.generator = gen
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	b := &mockBackend{}
	c, err := wireClient(context.Background(), b, store, cfg, obs)
	if err != nil {
		t.Fatalf("wireClient: %v", err)
	}
	return c, b
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"no embedder", []Option{WithRedis("localhost:6379", "")}},
		{"no database", []Option{WithEmbedder(&mockEmbedder{})}},
		{"empty redis addr", []Option{WithEmbedder(&mockEmbedder{}), WithRedis("", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.opts...)
			if err == nil {
				c.Close()
				t.Fatal("expected error")
			}
		})
	}
}

func TestClient_Match(t *testing.T) {
	gen := &mockGenerator{generateFn: func(_ context.Context, _ string) (string, error) {
		return "```json\n[{\"jobId\": 1, \"matchedSkills\": [\"go\"], \"matchReason\": \"go backend\"}]\n```", nil
	}}
	c, _ := testClient(t, &mockPostings{postings: samplePostings()}, &mockEmbedder{}, gen)

	report, err := c.Match(context.Background(), []string{"Go"}, nil, 5)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if report.JudgeStatus != match.JudgeOK {
		t.Errorf("judge status = %q, want ok", report.JudgeStatus)
	}
	if report.CandidateCount != 1 {
		t.Errorf("candidates = %d, want 1", report.CandidateCount)
	}
	if len(report.Matches) != 1 || report.Matches[0].ID != 1 {
		t.Fatalf("matches = %+v, want posting 1", report.Matches)
	}
	if report.Matches[0].MatchReason != "go backend" {
		t.Errorf("reason = %q", report.Matches[0].MatchReason)
	}
}

func TestClient_Match_EmptySkills(t *testing.T) {
	c, _ := testClient(t, &mockPostings{postings: samplePostings()}, &mockEmbedder{}, nil)

	_, err := c.Match(context.Background(), []string{" ", ""}, nil, 5)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestClient_Match_NoGenerator(t *testing.T) {
	c, _ := testClient(t, &mockPostings{postings: samplePostings()}, &mockEmbedder{}, nil)

	report, err := c.Match(context.Background(), []string{"go"}, nil, 5)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if report.JudgeStatus != match.JudgeFailed {
		t.Errorf("judge status = %q, want failed", report.JudgeStatus)
	}
	if !report.Degraded {
		t.Error("expected degraded report")
	}
}

func TestClient_Match_EmbedderError(t *testing.T) {
	emb := &mockEmbedder{embedFn: func(_ context.Context, _ string) (EmbeddingResult, error) {
		return EmbeddingResult{}, errors.New("provider down")
	}}
	c, _ := testClient(t, &mockPostings{postings: samplePostings()}, emb, nil)

	_, err := c.Match(context.Background(), []string{"go"}, nil, 5)
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("err = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestClient_SalaryTrend(t *testing.T) {
	c, _ := testClient(t, &mockPostings{postings: samplePostings()}, &mockEmbedder{}, nil)

	trends, err := c.SalaryTrend(context.Background(), "Backend Engineer", "Astronaut")
	if err != nil {
		t.Fatalf("SalaryTrend: %v", err)
	}
	if got := trends["Backend Engineer"]; len(got.Progression) != 1 {
		t.Errorf("progression = %v, want one experience bucket", got.Progression)
	}
	if got := trends["Astronaut"]; len(got.Progression) != 0 || len(got.Location) != 0 {
		t.Errorf("unknown title trend = %+v, want empty", got)
	}
}

func TestClient_ImportAndReload(t *testing.T) {
	store := &mockPostings{postings: samplePostings()}
	c, _ := testClient(t, store, &mockEmbedder{}, nil)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	n, err := c.Import(context.Background(), []Posting{{ID: 3, Title: "SRE"}})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want 1", n)
	}
	if c.Len() != 2 {
		t.Errorf("Len before reload = %d, want 2", c.Len())
	}

	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len after reload = %d, want 3", c.Len())
	}
}

func TestClient_Reload_KeepsEngineOnError(t *testing.T) {
	store := &mockPostings{postings: samplePostings()}
	c, _ := testClient(t, store, &mockEmbedder{}, nil)

	store.loadErr = errors.New("connection reset")
	if err := c.Reload(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want previous snapshot of 2", c.Len())
	}
}

func TestClient_IndexMissing(t *testing.T) {
	store := &mockPostings{postings: append(samplePostings(), posting.Posting{ID: 3, Title: "SRE"})}
	emb := &mockBatchEmbedder{}
	c, _ := testClient(t, store, emb, nil)

	res, err := c.IndexMissing(context.Background(), false)
	if err != nil {
		t.Fatalf("IndexMissing: %v", err)
	}
	if res.Embedded != 1 {
		t.Errorf("embedded = %d, want 1", res.Embedded)
	}
	if _, ok := store.vectors[3]; !ok {
		t.Error("posting 3 vector not stored")
	}
	if emb.calls != 1 {
		t.Errorf("batch calls = %d, want 1", emb.calls)
	}
}

func TestClient_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus string
		wantStore  string
	}{
		{"healthy", nil, "ok", "healthy"},
		{"store down", errors.New("refused"), "degraded", "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, b := testClient(t, &mockPostings{postings: samplePostings()}, &mockEmbedder{}, nil)
			b.pingFn = func(_ context.Context) error { return tt.pingErr }

			h := c.Health(context.Background())
			if h.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", h.Status, tt.wantStatus)
			}
			if h.Checks["store"] != tt.wantStore {
				t.Errorf("store check = %q, want %q", h.Checks["store"], tt.wantStore)
			}
			if h.Postings != 2 {
				t.Errorf("postings = %d, want 2", h.Postings)
			}
		})
	}
}

func TestClient_PingRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, b := testClient(t, &mockPostings{}, &mockEmbedder{}, nil, WithPrometheus(reg))

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	b.pingFn = func(_ context.Context) error { return errors.New("down") }
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}

	ops := c.obs.metrics.calls
	if got := testutil.ToFloat64(ops.WithLabelValues("ping", "ok")); got != 1 {
		t.Errorf("ping ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ops.WithLabelValues("ping", "error")); got != 1 {
		t.Errorf("ping error = %v, want 1", got)
	}
}

func TestClient_MatchRecordsJudgeStatus(t *testing.T) {
	calls := 0
	gen := &mockGenerator{generateFn: func(_ context.Context, _ string) (string, error) {
		calls++
		if calls == 1 {
			return `[{"jobId": 1, "matchReason": "go"}]`, nil
		}
		return "", errors.New("quota")
	}}
	reg := prometheus.NewRegistry()
	c, _ := testClient(t, &mockPostings{postings: samplePostings()}, &mockEmbedder{}, gen, WithPrometheus(reg))

	if _, err := c.Match(context.Background(), []string{"go"}, nil, 5); err != nil {
		t.Fatalf("first Match: %v", err)
	}
	if _, err := c.Match(context.Background(), []string{"go"}, nil, 5); err != nil {
		t.Fatalf("second Match: %v", err)
	}
	if _, err := c.Match(context.Background(), nil, nil, 5); err == nil {
		t.Fatal("expected empty query error")
	}

	m := c.obs.metrics
	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"ok call", m.calls.WithLabelValues("match", "ok"), 1},
		{"degraded call", m.calls.WithLabelValues("match", "degraded"), 1},
		{"error call", m.calls.WithLabelValues("match", "error"), 1},
		{"judge ok", m.judge.WithLabelValues("match", string(match.JudgeOK)), 1},
		{"judge failed", m.judge.WithLabelValues("match", string(match.JudgeFailed)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	// The error call records no match count.
	if got := testutil.ToFloat64(m.judge.WithLabelValues("match", string(match.JudgeNotCalled))); got != 0 {
		t.Errorf("judge not_called = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(m.matches); n != 1 {
		t.Errorf("matches series = %d, want 1", n)
	}
}

func TestObserver_NilIsSafe(t *testing.T) {
	var o *observer
	o.call("ping", time.Now(), nil)
	o.run("match", time.Now(), Report{}, errors.New("x"))

	quiet := &observer{}
	quiet.run("match", time.Now(), Report{Degraded: true}, nil)
}

func TestNewObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.metrics.calls != second.metrics.calls || first.metrics.judge != second.metrics.judge {
		t.Error("expected the registered counter to be reused")
	}
}

func TestClient_Close(t *testing.T) {
	c, b := testClient(t, &mockPostings{}, &mockEmbedder{}, nil)
	c.Close()
	if !b.closed {
		t.Error("backend not closed")
	}
}
