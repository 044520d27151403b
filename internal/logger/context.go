package logger

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	runIDKey  struct{}
)

// ContextWithLogger stores l in ctx. A nil l is stored as a no-op logger.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		l = zap.NewNop()
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// StartRun tags ctx with a match run. The returned logger is base with a
// run_id field and is also stored in the returned context, so every call
// site downstream logs under the same run. A nil base falls back to the
// logger already in ctx.
//
// If ctx already belongs to a run, that run is joined and runID is ignored.
func StartRun(ctx context.Context, base *zap.Logger, runID string) (context.Context, *zap.Logger) {
	if id := RunID(ctx); id != "" {
		return ctx, FromContext(ctx)
	}
	if base == nil {
		base = FromContext(ctx)
	}
	log := base.With(zap.String(FieldRunID, runID))
	ctx = context.WithValue(ctx, runIDKey{}, runID)
	return ContextWithLogger(ctx, log), log
}

// RunID returns the id of the match run ctx belongs to, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
