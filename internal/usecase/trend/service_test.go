package trend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	domtrend "github.com/kailas-cloud/jobmatch/internal/domain/trend"
)

// --- Mocks ---

type mockIndex struct {
	byTitle map[string][]posting.Posting
}

func (m *mockIndex) ByTitle(title string) []posting.Posting {
	return m.byTitle[title]
}

func TestAggregate(t *testing.T) {
	postings := []posting.Posting{
		{Experience: "3 to 5 Years", SalaryRange: "$50,000 - $70,000", Location: "San Francisco, CA"},
		{Experience: "3-5 Years", SalaryRange: "$60K-$90K", Location: "CA"},
		{Experience: "Entry Level", SalaryRange: "$40,000-$50,000", Location: "Austin, TX"},
		{Experience: "2 to 7 Years", SalaryRange: "Not Disclosed", Location: "Boston, MA"},
		{Experience: "1 to 2 Years", SalaryRange: "$10-$20", Location: "  "},
	}

	got := Aggregate(postings, nil)

	wantProg := domtrend.Progression{4: (60000 + 75) / 2.0, 1.5: 15}
	if len(got.Progression) != len(wantProg) {
		t.Fatalf("progression = %v, want %v", got.Progression, wantProg)
	}
	for k, v := range wantProg {
		if got.Progression[k] != v {
			t.Errorf("progression[%v] = %v, want %v", k, got.Progression[k], v)
		}
	}

	wantLoc := map[string]float64{"CA": (60000 + 75) / 2.0, "TX": 45000}
	if len(got.Location) != len(wantLoc) {
		t.Fatalf("location = %v, want %v", got.Location, wantLoc)
	}
	for k, v := range wantLoc {
		if got.Location[k] != v {
			t.Errorf("location[%q] = %v, want %v", k, got.Location[k], v)
		}
	}
	if _, ok := got.Location["San Francisco, CA"]; ok {
		t.Error("long key must be merged away")
	}
	if _, ok := got.Location["MA"]; ok {
		t.Error("bucket without salary must be absent")
	}
}

func TestAggregate_MergeAveragesAllContributions(t *testing.T) {
	postings := []posting.Posting{
		{SalaryRange: "100-100", Location: "Seattle, WA"},
		{SalaryRange: "100-100", Location: "Seattle, WA"},
		{SalaryRange: "400-400", Location: "Spokane, WA"},
	}
	got := Aggregate(postings, nil)
	if got.Location["WA"] != 200 {
		t.Errorf("WA = %v, want mean of all three postings (200)", got.Location["WA"])
	}
}

func TestAggregate_CustomPolicy(t *testing.T) {
	keep := func(s string) string { return s }
	got := Aggregate([]posting.Posting{{SalaryRange: "1-3", Location: "Zürich"}}, keep)
	if got.Location["Zürich"] != 2 {
		t.Errorf("location = %v", got.Location)
	}
}

func TestSalaryTrend(t *testing.T) {
	idx := &mockIndex{byTitle: map[string][]posting.Posting{
		"Data Analyst": {{Experience: "0 - 2", SalaryRange: "10-20", Location: "NY"}},
	}}
	svc := New(idx, nil)

	got, err := svc.SalaryTrend(context.Background(), []string{"Data Analyst", "Ghost", "Data Analyst"})
	if err != nil {
		t.Fatalf("SalaryTrend: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d titles, want 2", len(got))
	}
	if got["Data Analyst"].Progression[1] != 15 || got["Data Analyst"].Location["NY"] != 15 {
		t.Errorf("trend = %+v", got["Data Analyst"])
	}
	ghost := got["Ghost"]
	if ghost.Progression == nil || ghost.Location == nil || len(ghost.Progression) != 0 {
		t.Errorf("unknown title should yield empty maps, got %+v", ghost)
	}

	data, err := json.Marshal(got["Data Analyst"])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"progression":{"1":15}`) {
		t.Errorf("json = %s", data)
	}
}

func TestSalaryTrend_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&mockIndex{}, nil).SalaryTrend(ctx, []string{"a", "b"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
