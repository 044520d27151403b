package jobmatch

import "github.com/kailas-cloud/jobmatch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidSchema          = domain.ErrInvalidSchema
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrJudgeUnavailable       = domain.ErrJudgeUnavailable
)
