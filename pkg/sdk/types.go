package jobmatch

import (
	"github.com/kailas-cloud/jobmatch/internal/domain/keyword"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	"github.com/kailas-cloud/jobmatch/internal/domain/trend"
	ingestuc "github.com/kailas-cloud/jobmatch/internal/usecase/ingest"
	matchinguc "github.com/kailas-cloud/jobmatch/internal/usecase/matching"
)

type (
	// Report is the outcome of one match run: ranked results plus judge status.
	Report = match.Report
	// MatchResult is one ranked posting.
	MatchResult = match.Result
	// Trend is the salary progression and location spread of one title.
	Trend = trend.Trend
	// Keyword is a phrase with its relevance to the source text.
	Keyword = keyword.Weight
	// Posting is one job posting record.
	Posting = posting.Posting
	// ResumeResult is the full analysis of one resume.
	ResumeResult = matchinguc.ResumeResult
	// IndexResult counts what IndexMissing did.
	IndexResult = ingestuc.Result
)
