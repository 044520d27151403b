package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/jobmatch/internal/domain"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest            ErrorCode = "bad_request"
	CodeUnauthorized          ErrorCode = "unauthorized"
	CodeEmptyQuery            ErrorCode = "empty_query"
	CodeValidationFailed      ErrorCode = "validation_failed"
	CodeConfigurationError    ErrorCode = "configuration_error"
	CodeEmbeddingQuota        ErrorCode = "embedding_quota_exceeded"
	CodeEmbeddingProviderFail ErrorCode = "embedding_provider_error"
	CodeJudgeUnavailable      ErrorCode = "judge_unavailable"
	CodeNotFound              ErrorCode = "not_found"
	CodeInternalError         ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// sentinel maps a domain error to a status and code.
type sentinel struct {
	err    error
	status int
	code   ErrorCode
}

// Order matters: the first match wins.
var sentinels = []sentinel{
	{domain.ErrVectorDimMismatch, http.StatusInternalServerError, CodeConfigurationError},
	{domain.ErrEmptyQuery, http.StatusBadRequest, CodeEmptyQuery},
	{domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, CodeEmbeddingQuota},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderFail},
	{domain.ErrJudgeUnavailable, http.StatusBadGateway, CodeJudgeUnavailable},
}

func sentinelHandlers() []errorHandler {
	hs := make([]errorHandler, 0, len(sentinels)+1)
	hs = append(hs, dimMismatchHandler)
	for _, s := range sentinels {
		hs = append(hs, sentinelHandler(s))
	}
	return hs
}

func sentinelHandler(s sentinel) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, s.err) {
			return false
		}
		// Only the sentinel text reaches the client.
		writeError(w, s.status, s.code, s.err.Error())
		return true
	}
}

// dimMismatchHandler reports both dimensions so operators can spot a model change.
func dimMismatchHandler(w http.ResponseWriter, err error) bool {
	var dme *domain.DimMismatchError
	if !errors.As(err, &dme) {
		return false
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"code":              CodeConfigurationError,
		"message":           domain.ErrVectorDimMismatch.Error(),
		"query_dimensions":  dme.Query,
		"stored_dimensions": dme.Stored,
	})
	return true
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Calls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
