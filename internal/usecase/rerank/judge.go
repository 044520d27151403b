// Package rerank asks a generative judge to pick and annotate the best
// postings from the similarity window and leniently parses its reply.
package rerank

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	"github.com/kailas-cloud/jobmatch/internal/logger"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
)

// Defaults used when Options fields are zero.
const (
	DefaultMaxJudgments = 15
	DefaultTimeout      = 60 * time.Second
	defaultMaxLogLen    = 300
)

// Options configures the judge.
type Options struct {
	Provider     string
	Model        string
	MaxJudgments int
	Timeout      time.Duration
}

// Judge is the generative re-ranker adapter. It never returns an error:
// every failure is folded into the verdict status.
type Judge struct {
	gen  domain.Generator
	opts Options
}

// NewJudge creates a judge. gen may be nil, in which case every call
// reports JudgeFailed.
func NewJudge(gen domain.Generator, opts Options) *Judge {
	if opts.MaxJudgments <= 0 {
		opts.MaxJudgments = DefaultMaxJudgments
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Judge{gen: gen, opts: opts}
}

// Provider returns the configured provider name.
func (j *Judge) Provider() string { return j.opts.Provider }

// Judge sends one request for the whole window. An empty window is not sent.
func (j *Judge) Judge(
	ctx context.Context, skills []string, profile map[string]any, snippets []posting.Snippet,
) match.Verdict {
	if len(snippets) == 0 {
		return match.Verdict{Status: match.JudgeNotCalled}
	}

	log := logger.WithCommonFields(logger.FromContext(ctx), j.opts.Provider, j.opts.Model)

	if j.gen == nil {
		log.Warn("Judge not configured", zap.Error(domain.ErrJudgeUnavailable))
		return j.finish(match.Verdict{Status: match.JudgeFailed}, 0)
	}

	prompt, err := BuildPrompt(skills, profile, snippets, j.opts.MaxJudgments)
	if err != nil {
		log.Error("Build judge prompt failed", zap.Error(err))
		return j.finish(match.Verdict{Status: match.JudgeFailed}, 0)
	}

	log.Debug("Judge request",
		zap.Int("snippets", len(snippets)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	callCtx, cancel := context.WithTimeout(ctx, j.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := j.gen.Generate(callCtx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		status := match.JudgeFailed
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			status = match.JudgeTimeout
		}
		log.Warn("Judge call failed, ranking degrades to empty",
			zap.String("status", string(status)),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return j.finish(match.Verdict{Status: status}, elapsed)
	}

	log.Debug("Judge response",
		zap.Duration("duration", elapsed),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, defaultMaxLogLen)),
	)

	judgments, discarded, err := ParseJudgments(raw, j.opts.MaxJudgments)
	if err != nil {
		log.Warn("Judge response unparseable",
			zap.String("response_preview", logger.TruncateForLog(raw, defaultMaxLogLen)),
			zap.Error(err),
		)
		return j.finish(match.Verdict{Status: match.JudgeUnparseable}, elapsed)
	}

	v := match.Verdict{Judgments: judgments, Discarded: discarded, Status: match.JudgeOK}
	if len(judgments) == 0 {
		v.Status = match.JudgeEmpty
	}
	if discarded > 0 {
		log.Info("Discarded judge records", zap.Int("discarded", discarded))
	}
	return j.finish(v, elapsed)
}

func (j *Judge) finish(v match.Verdict, elapsed time.Duration) match.Verdict {
	metrics.JudgeOutcomesTotal.WithLabelValues(j.opts.Provider, string(v.Status)).Inc()
	if elapsed > 0 {
		metrics.JudgeRequestDuration.WithLabelValues(j.opts.Provider).Observe(elapsed.Seconds())
	}
	return v
}
