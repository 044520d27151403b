package health

import "context"

// StorePinger checks corpus store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusCounter reports the size of the loaded snapshot.
type CorpusCounter interface {
	Len() int
}
