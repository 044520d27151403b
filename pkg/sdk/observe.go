package jobmatch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call results. A degraded call succeeded but its judge stage lost
// information, so its matches may be incomplete.
const (
	resultOK       = "ok"
	resultDegraded = "degraded"
	resultError    = "error"
)

type clientMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	judge    *prometheus.CounterVec
	matches  *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobmatch",
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "Client calls by operation and result (ok, degraded, error).",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobmatch",
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Client call duration in seconds.",
			Buckets:   []float64{.005, .025, .1, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		judge: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobmatch",
			Subsystem: "client",
			Name:      "judge_runs_total",
			Help:      "Match runs by operation and judge status.",
		}, []string{"operation", "judge_status"}),
		matches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobmatch",
			Subsystem: "client",
			Name:      "matches_returned",
			Help:      "Matches returned per successful match run.",
			Buckets:   []float64{0, 1, 3, 5, 10, 15, 25},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.judge); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.matches); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at the collector already
// registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("jobmatch: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("jobmatch: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records client calls. Either field may be nil.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// call records an operation that has no match report.
func (o *observer) call(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	o.record(op, result, time.Since(start))

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("jobmatch call failed", "op", op, "duration", time.Since(start), "error", err)
		return
	}
	o.logger.Debug("jobmatch call done", "op", op, "duration", time.Since(start))
}

// run records a match-producing operation. Its result is degraded when the
// judge stage lost information, and the judge status is counted separately
// so an empty match list can be told apart from a failed judge.
func (o *observer) run(op string, start time.Time, report Report, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	result := resultOK
	switch {
	case err != nil:
		result = resultError
	case report.Degraded:
		result = resultDegraded
	}
	o.record(op, result, dur)
	if o.metrics != nil && err == nil {
		o.metrics.judge.WithLabelValues(op, string(report.JudgeStatus)).Inc()
		o.metrics.matches.WithLabelValues(op).Observe(float64(len(report.Matches)))
	}

	if o.logger == nil {
		return
	}
	switch result {
	case resultError:
		o.logger.Warn("jobmatch run failed", "op", op, "run_id", report.RunID, "duration", dur, "error", err)
	case resultDegraded:
		o.logger.Warn("jobmatch run degraded",
			"op", op,
			"run_id", report.RunID,
			"judge_status", report.JudgeStatus,
			"candidates", report.CandidateCount,
			"duration", dur,
		)
	default:
		o.logger.Debug("jobmatch run done",
			"op", op,
			"run_id", report.RunID,
			"matches", len(report.Matches),
			"duration", dur,
		)
	}
}

func (o *observer) record(op, result string, dur time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.calls.WithLabelValues(op, result).Inc()
	o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
}
