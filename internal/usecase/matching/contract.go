package matching

import (
	"context"

	"github.com/kailas-cloud/jobmatch/internal/domain/keyword"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	"github.com/kailas-cloud/jobmatch/internal/domain/trend"
)

// Retriever produces the similarity window for a skill list.
type Retriever interface {
	Retrieve(ctx context.Context, skills []string) ([]match.Candidate, error)
}

// Judge re-ranks the window. It reports failures through the verdict status.
type Judge interface {
	Judge(ctx context.Context, skills []string, profile map[string]any, snippets []posting.Snippet) match.Verdict
	Provider() string
}

// Corpus resolves postings by id.
type Corpus interface {
	Get(id int64) (*posting.Posting, bool)
}

// TrendAggregator computes salary trends per title.
type TrendAggregator interface {
	SalaryTrend(ctx context.Context, titles []string) (map[string]trend.Trend, error)
}

// KeywordExtractor weights phrases of free text.
type KeywordExtractor interface {
	Extract(ctx context.Context, text string, topN int) []keyword.Weight
}

// ResumeExtractor pulls skills and a profile out of resume text.
type ResumeExtractor interface {
	ExtractSkills(ctx context.Context, text string) []string
	ExtractProfile(ctx context.Context, text string) map[string]any
}
