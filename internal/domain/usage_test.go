package domain

import (
	"context"
	"testing"
)

func TestEmbeddingUsage(t *testing.T) {
	if UsageFromContext(context.Background()) != nil {
		t.Fatal("expected nil collector")
	}
	UsageFromContext(context.Background()).AddTokens(5) // nil receiver is a no-op

	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(3)
	UsageFromContext(ctx).AddTokens(0)
	if u.TotalTokens != 3 || u.Calls != 2 {
		t.Errorf("usage = %+v, want 3 tokens over 2 calls", *u)
	}
}
