// Package trend aggregates salary by experience and by region over every
// corpus posting that shares a title with a match.
package trend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/jobmatch/internal/domain/posting"
	domtrend "github.com/kailas-cloud/jobmatch/internal/domain/trend"
	"github.com/kailas-cloud/jobmatch/internal/logger"
)

// DefaultConcurrency bounds the titles aggregated in parallel.
const DefaultConcurrency = 4

// TitleIndex returns all postings with exactly the given title.
type TitleIndex interface {
	ByTitle(title string) []posting.Posting
}

// Service is the trend aggregator.
type Service struct {
	index       TitleIndex
	policy      domtrend.RegionPolicy
	concurrency int
}

// New creates a trend service. A nil policy means domtrend.TrailingRegion.
func New(index TitleIndex, policy domtrend.RegionPolicy) *Service {
	if policy == nil {
		policy = domtrend.TrailingRegion
	}
	return &Service{index: index, policy: policy, concurrency: DefaultConcurrency}
}

// SalaryTrend computes one Trend per distinct title. Only context
// cancellation produces an error.
func (s *Service) SalaryTrend(ctx context.Context, titles []string) (map[string]domtrend.Trend, error) {
	titles = uniqueInOrder(titles)
	trends := make([]domtrend.Trend, len(titles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, title := range titles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // context error
			}
			trends[i] = Aggregate(s.index.ByTitle(title), s.policy)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregate trends: %w", err)
	}

	out := make(map[string]domtrend.Trend, len(titles))
	for i, title := range titles {
		out[title] = trends[i]
	}

	logger.FromContext(ctx).Debug("Salary trends aggregated", zap.Int("titles", len(titles)))
	return out, nil
}

type bucket struct {
	sum float64
	n   int
}

func (b *bucket) add(v float64) {
	b.sum += v
	b.n++
}

func (b bucket) mean() float64 { return b.sum / float64(b.n) }

// Aggregate computes the experience and location trends of postings.
// A posting without a parseable salary contributes to neither; one without
// a parseable experience range still contributes to its location bucket.
func Aggregate(postings []posting.Posting, policy domtrend.RegionPolicy) domtrend.Trend {
	if policy == nil {
		policy = domtrend.TrailingRegion
	}

	byExp := make(map[float64]*bucket)
	byLoc := make(map[string]*bucket)

	for i := range postings {
		p := &postings[i]
		salary, ok := domtrend.ParseSalaryRange(p.SalaryRange)
		if !ok {
			continue
		}
		mid := salary.Midpoint()

		if exp, ok := domtrend.ParseExperienceRange(p.Experience); ok {
			accumulate(byExp, exp.Midpoint(), mid)
		}
		if loc := strings.TrimSpace(p.Location); loc != "" {
			accumulate(byLoc, loc, mid)
		}
	}

	// Region merge runs once over the accumulated buckets so merged
	// values are averaged together, not averaged twice.
	regions := make(map[string]*bucket, len(byLoc))
	for loc, b := range byLoc {
		dst := policy(loc)
		r, ok := regions[dst]
		if !ok {
			r = &bucket{}
			regions[dst] = r
		}
		r.sum += b.sum
		r.n += b.n
	}

	t := domtrend.Trend{
		Progression: make(domtrend.Progression, len(byExp)),
		Location:    make(map[string]float64, len(regions)),
	}
	for k, b := range byExp {
		t.Progression[k] = b.mean()
	}
	for k, b := range regions {
		t.Location[k] = b.mean()
	}
	return t
}

func accumulate[K comparable](m map[K]*bucket, key K, v float64) {
	b, ok := m[key]
	if !ok {
		b = &bucket{}
		m[key] = b
	}
	b.add(v)
}

func uniqueInOrder(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
