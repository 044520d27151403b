package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding token usage for one request. The HTTP
// handler stores it in the context, services add to it, and the handler
// reports it in a response header. Stages of a request run sequentially.
type EmbeddingUsage struct {
	TotalTokens int
	Calls       int
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector, or nil when none is set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one embedding call. Safe on a nil receiver.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Calls++
	}
}
