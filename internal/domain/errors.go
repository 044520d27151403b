package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSchema signals a document that does not decode into a posting.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrVectorDimMismatch signals that query and stored vectors live in different spaces.
	// It is a configuration error and aborts the request.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyQuery signals a candidate without usable skills.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrJudgeUnavailable signals that no generative judge is configured or reachable.
	ErrJudgeUnavailable = errors.New("judge unavailable")
)

// DimMismatchError carries both sides of a dimension mismatch.
type DimMismatchError struct {
	JobID  int64
	Query  int
	Stored int
}

func (e *DimMismatchError) Error() string {
	return fmt.Sprintf("%s: query has %d dimensions, posting %d has %d",
		ErrVectorDimMismatch.Error(), e.Query, e.JobID, e.Stored)
}

func (e *DimMismatchError) Unwrap() error { return ErrVectorDimMismatch }
