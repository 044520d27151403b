package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Match pipeline metrics.
var (
	MatchCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_candidates",
			Help:      "Similarity candidates per match run",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	MatchJudgments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_judgments",
			Help:      "Valid judge records per match run",
			Buckets:   []float64{0, 1, 3, 5, 10, 15},
		},
	)

	JudgeOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judge_outcomes_total",
			Help:      "Generative judge outcomes",
		},
		[]string{"provider", "outcome"},
	)

	JudgeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "judge_request_duration_seconds",
			Help:      "Generative judge call duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)

	SkippedPostingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_postings_total",
			Help:      "Postings skipped during retrieval",
		},
		[]string{"reason"},
	)
)

var matchOnce sync.Once

// RegisterMatchMetrics registers the match pipeline metrics. Safe to call more than once.
func RegisterMatchMetrics() {
	matchOnce.Do(func() {
		prometheus.MustRegister(MatchCandidates)
		prometheus.MustRegister(MatchJudgments)
		prometheus.MustRegister(JudgeOutcomesTotal)
		prometheus.MustRegister(JudgeRequestDuration)
		prometheus.MustRegister(SkippedPostingsTotal)
	})
}
