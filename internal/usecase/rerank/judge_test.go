package rerank

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
)

// --- Mocks ---

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.generateFn(ctx, prompt)
}

func reply(s string) *mockGenerator {
	return &mockGenerator{generateFn: func(context.Context, string) (string, error) { return s, nil }}
}

var testSnippets = []posting.Snippet{
	{JobID: 1, Title: "Backend Engineer", Company: "Acme", Skills: []string{"go"}},
	{JobID: 2, Title: "Data Engineer", Company: "Initech", Skills: []string{}},
}

func TestJudge_OK(t *testing.T) {
	var gotPrompt string
	gen := &mockGenerator{generateFn: func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "```json\n[{\"jobId\": 2, \"matchReason\": \"pipelines\"}]\n```", nil
	}}
	j := NewJudge(gen, Options{Provider: "test-ok"})

	v := j.Judge(context.Background(), []string{"go", "sql"}, map[string]any{"name": "Ada"}, testSnippets)
	if v.Status != match.JudgeOK || len(v.Judgments) != 1 || v.Judgments[0].JobID != 2 {
		t.Fatalf("verdict = %+v", v)
	}
	for _, want := range []string{"go, sql", `"name": "Ada"`, `"title": "Data Engineer"`, "up to 15"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if got := testutil.ToFloat64(metrics.JudgeOutcomesTotal.WithLabelValues("test-ok", "ok")); got != 1 {
		t.Errorf("ok outcomes = %v, want 1", got)
	}
}

func TestJudge_NotCalledForEmptyWindow(t *testing.T) {
	gen := &mockGenerator{generateFn: func(context.Context, string) (string, error) {
		t.Fatal("generator must not be called")
		return "", nil
	}}
	v := NewJudge(gen, Options{}).Judge(context.Background(), []string{"go"}, nil, nil)
	if v.Status != match.JudgeNotCalled {
		t.Errorf("status = %s, want not_called", v.Status)
	}
}

func TestJudge_Degrades(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGenerator
		want match.JudgeStatus
	}{
		{"failure", &mockGenerator{generateFn: func(context.Context, string) (string, error) {
			return "", errors.New("503")
		}}, match.JudgeFailed},
		{"unparseable", reply("I'm sorry, I can't rank these."), match.JudgeUnparseable},
		{"empty list", reply("[]"), match.JudgeEmpty},
		{"only bad ids", reply(`[{"jobId": "abc"}]`), match.JudgeEmpty},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewJudge(tc.gen, Options{Provider: "test"}).Judge(context.Background(), nil, nil, testSnippets)
			if v.Status != tc.want {
				t.Errorf("status = %s, want %s", v.Status, tc.want)
			}
			if len(v.Judgments) != 0 {
				t.Errorf("expected no judgments, got %d", len(v.Judgments))
			}
			if !v.Status.Degraded() {
				t.Error("expected degraded status")
			}
		})
	}
}

func TestJudge_Timeout(t *testing.T) {
	gen := &mockGenerator{generateFn: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	j := NewJudge(gen, Options{Timeout: 10 * time.Millisecond})

	v := j.Judge(context.Background(), []string{"go"}, nil, testSnippets)
	if v.Status != match.JudgeTimeout {
		t.Errorf("status = %s, want timeout", v.Status)
	}
}

func TestJudge_NilGenerator(t *testing.T) {
	v := NewJudge(nil, Options{}).Judge(context.Background(), []string{"go"}, nil, testSnippets)
	if v.Status != match.JudgeFailed {
		t.Errorf("status = %s, want failed", v.Status)
	}
}

func TestBuildPrompt_EmptyProfile(t *testing.T) {
	p, err := BuildPrompt([]string{"go"}, nil, nil, 15)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if !strings.Contains(p, "Candidate Profile:\n{}") || !strings.Contains(p, "job postings:\n[]") {
		t.Errorf("unexpected prompt:\n%s", p)
	}
	if strings.Contains(p, "{{") {
		t.Error("unreplaced placeholder")
	}
}
