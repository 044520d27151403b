// Package matching composes retrieval, judging and reconciliation into the
// public match operations.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/keyword"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	"github.com/kailas-cloud/jobmatch/internal/domain/profile"
	"github.com/kailas-cloud/jobmatch/internal/domain/trend"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
)

// DefaultTopN is the number of matches returned when the caller asks for none.
const DefaultTopN = 10

// Service is the public surface of the engine.
type Service struct {
	retriever Retriever
	judge     Judge
	corpus    Corpus
	trends    TrendAggregator
	keywords  KeywordExtractor
	resume    ResumeExtractor
	topN      int
	logger    *zap.Logger
}

// Deps groups the collaborators of Service.
type Deps struct {
	Retriever Retriever
	Judge     Judge
	Corpus    Corpus
	Trends    TrendAggregator
	Keywords  KeywordExtractor
	Resume    ResumeExtractor
}

// New creates the matching service. defaultTopN <= 0 falls back to DefaultTopN.
func New(d Deps, defaultTopN int, logger *zap.Logger) *Service {
	if defaultTopN <= 0 {
		defaultTopN = DefaultTopN
	}
	return &Service{
		retriever: d.Retriever,
		judge:     d.Judge,
		corpus:    d.Corpus,
		trends:    d.Trends,
		keywords:  d.Keywords,
		resume:    d.Resume,
		topN:      defaultTopN,
		logger:    logger,
	}
}

// RetrieveAndRank runs retrieval, the judge and reconciliation for one
// candidate. Only caller and configuration errors are returned; judge
// problems are visible in the report.
func (s *Service) RetrieveAndRank(ctx context.Context, c profile.Candidate, topN int) (match.Report, error) {
	if topN <= 0 {
		topN = s.topN
	}
	ctx, log := logger.StartRun(ctx, s.logger, uuid.NewString())
	runID := logger.RunID(ctx)
	start := time.Now()

	skills := profile.NormalizeSkills(c.Skills)
	candidates, err := s.retriever.Retrieve(ctx, skills)
	if err != nil {
		log.Warn("Retrieval failed", zap.Error(err))
		return match.Report{RunID: runID}, fmt.Errorf("retrieve: %w", err)
	}

	snippets := make([]posting.Snippet, 0, len(candidates))
	for _, cand := range candidates {
		if p, ok := s.corpus.Get(cand.JobID()); ok {
			snippets = append(snippets, p.Snippet())
		}
	}

	verdict := s.judge.Judge(ctx, skills, c.ProfileOrEmpty(), snippets)
	results := Reconcile(candidates, verdict.Judgments, s.corpus.Get, topN)

	report := match.Report{
		RunID:              runID,
		Matches:            results,
		CandidateCount:     len(candidates),
		JudgedCount:        distinctJobs(verdict.Judgments),
		DiscardedJudgments: verdict.Discarded,
		JudgeStatus:        verdict.Status,
		Degraded:           verdict.Status.Degraded(),
	}

	metrics.MatchCandidates.Observe(float64(report.CandidateCount))
	metrics.MatchJudgments.Observe(float64(report.JudgedCount))

	log.Info("match_run",
		zap.Int("skills", len(skills)),
		zap.Int("candidates", report.CandidateCount),
		zap.Int("judged", report.JudgedCount),
		zap.Int("discarded", report.DiscardedJudgments),
		zap.Int("matches", len(report.Matches)),
		zap.Int("top_n", topN),
		zap.String("judge_provider", s.judge.Provider()),
		zap.String("judge_status", string(report.JudgeStatus)),
		zap.Bool("degraded", report.Degraded),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// distinctJobs counts the postings js judged. Repeated ids count once since
// Reconcile keeps only the last of them.
func distinctJobs(js []match.Judgment) int {
	seen := make(map[int64]struct{}, len(js))
	for _, j := range js {
		seen[j.JobID] = struct{}{}
	}
	return len(seen)
}

// SalaryTrend returns trends keyed by title.
func (s *Service) SalaryTrend(ctx context.Context, titles []string) (map[string]trend.Trend, error) {
	out, err := s.trends.SalaryTrend(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("salary trend: %w", err)
	}
	return out, nil
}

// KeywordFrequencies returns up to topN weighted phrases of text. It never fails.
func (s *Service) KeywordFrequencies(ctx context.Context, text string, topN int) []keyword.Weight {
	return s.keywords.Extract(ctx, text, topN)
}

// ResumeResult is the full analysis of one resume.
type ResumeResult struct {
	ResumeSkills  []string               `json:"resumeSkills"`
	Matches       []match.Result         `json:"matches"`
	Keywords      []keyword.Weight       `json:"keywords"`
	SalaryTrend   map[string]trend.Trend `json:"salaryTrend"`
	ResumeProfile map[string]any         `json:"resumeProfile"`
	Report        match.Report           `json:"report"`
}

// ProcessResume extracts skills and profile from text, matches them and
// derives keywords and salary trends. A resume without skills yields an
// empty match list rather than an error.
func (s *Service) ProcessResume(ctx context.Context, text string) (ResumeResult, error) {
	// Extraction and the match it feeds share one run id.
	ctx, _ = logger.StartRun(ctx, s.logger, uuid.NewString())
	skills := s.resume.ExtractSkills(ctx, text)
	prof := s.resume.ExtractProfile(ctx, text)

	report, err := s.RetrieveAndRank(ctx, profile.Candidate{Skills: skills, Profile: prof}, s.topN)
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		report.JudgeStatus = match.JudgeNotCalled
	case err != nil:
		return ResumeResult{}, err
	}
	if report.Matches == nil {
		report.Matches = []match.Result{}
	}

	keywords := s.KeywordFrequencies(ctx, text, 0)

	trends, err := s.SalaryTrend(ctx, report.Titles())
	if err != nil {
		return ResumeResult{}, err
	}

	return ResumeResult{
		ResumeSkills:  skills,
		Matches:       report.Matches,
		Keywords:      keywords,
		SalaryTrend:   trends,
		ResumeProfile: prof,
		Report:        report,
	}, nil
}
