// Package chi exposes the matching operations over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain"
	"github.com/kailas-cloud/jobmatch/internal/domain/keyword"
	"github.com/kailas-cloud/jobmatch/internal/domain/match"
	"github.com/kailas-cloud/jobmatch/internal/domain/profile"
	"github.com/kailas-cloud/jobmatch/internal/domain/trend"
	"github.com/kailas-cloud/jobmatch/internal/metrics"
	healthuc "github.com/kailas-cloud/jobmatch/internal/usecase/health"
	"github.com/kailas-cloud/jobmatch/internal/usecase/matching"
)

const maxBodyBytes = 4 << 20

// Matcher is the engine surface served over HTTP.
type Matcher interface {
	RetrieveAndRank(ctx context.Context, c profile.Candidate, topN int) (match.Report, error)
	SalaryTrend(ctx context.Context, titles []string) (map[string]trend.Trend, error)
	KeywordFrequencies(ctx context.Context, text string, topN int) []keyword.Weight
	ProcessResume(ctx context.Context, text string) (matching.ResumeResult, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	matcher       Matcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(matcher Matcher, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		matcher:       matcher,
		health:        health,
		logger:        logger,
		errorHandlers: sentinelHandlers(),
	}
}

// Router mounts the routes with the standard middleware stack. An empty
// apiKeys disables bearer auth.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/match", s.Match)
		r.Post("/trends", s.Trends)
		r.Post("/keywords", s.Keywords)
		r.Post("/resume", s.Resume)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

type matchRequest struct {
	Skills  []string       `json:"skills"`
	Profile map[string]any `json:"profile"`
	TopN    int            `json:"topN"`
}

// Match handles POST /v1/match.
func (s *Server) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.matcher.RetrieveAndRank(ctx, profile.Candidate{Skills: req.Skills, Profile: req.Profile}, req.TopN)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, report)
}

type trendsRequest struct {
	Titles []string `json:"titles"`
}

// Trends handles POST /v1/trends.
func (s *Server) Trends(w http.ResponseWriter, r *http.Request) {
	var req trendsRequest
	if !s.decode(w, r, &req) {
		return
	}

	trends, err := s.matcher.SalaryTrend(r.Context(), req.Titles)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

type keywordsRequest struct {
	Text string `json:"text"`
	TopN int    `json:"topN"`
}

// Keywords handles POST /v1/keywords.
func (s *Server) Keywords(w http.ResponseWriter, r *http.Request) {
	var req keywordsRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	weights := s.matcher.KeywordFrequencies(ctx, req.Text, req.TopN)

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, weights)
}

type resumeRequest struct {
	Text string `json:"text"`
}

// Resume handles POST /v1/resume.
func (s *Server) Resume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.matcher.ProcessResume(ctx, req.Text)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, res)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger
	if reqID := chiMiddleware.GetReqID(r.Context()); reqID != "" {
		log = log.With(zap.String("request_id", reqID))
	}
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
