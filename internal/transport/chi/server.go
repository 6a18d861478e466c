// Package chi exposes the question-answering API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
	logpkg "github.com/luizgdev/rag-feedback-analyzer/internal/logger"
	healthuc "github.com/luizgdev/rag-feedback-analyzer/internal/usecase/health"
)

// Retriever finds complaint chunks similar to the question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}

// Synthesizer produces a grounded answer from retrieved chunks.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, chunks []domain.RetrievedChunk) (domain.SynthesizedAnswer, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements the HTTP handlers.
type Server struct {
	retriever   Retriever
	synthesizer Synthesizer
	health      HealthChecker
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(retriever Retriever, synthesizer Synthesizer, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		retriever:   retriever,
		synthesizer: synthesizer,
		health:      health,
		logger:      logger,
	}
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/ask", s.handleAsk)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
}

// Error codes returned in the JSON error body.
const (
	codeBadRequest    = "bad_request"
	codeEmptyQuery    = "empty_query"
	codeIndexNotReady = "index_not_ready"
	codeProviderError = "provider_error"
	codeInternalError = "internal_error"
)

type askRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type sourceItem struct {
	TicketID string  `json:"ticket_id"`
	Status   string  `json:"status,omitempty"`
	Score    float64 `json:"score"`
	Text     string  `json:"text"`
}

type askResponse struct {
	Answer         string       `json:"answer"`
	CitedTicketIDs []string     `json:"cited_ticket_ids"`
	Sources        []sourceItem `json:"sources"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleAsk handles POST /ask: retrieve, synthesize, respond.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	reqLog := logpkg.FromContext(r.Context())

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	chunks, err := s.retriever.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		s.handleDomainError(w, reqLog, err)
		return
	}

	answer, err := s.synthesizer.Synthesize(r.Context(), req.Query, chunks)
	if err != nil {
		s.handleDomainError(w, reqLog, err)
		return
	}

	reqLog.Debug("question answered",
		zap.Int("retrieved", len(chunks)),
		zap.Int("cited", len(answer.CitedTicketIDs)),
	)

	sources := make([]sourceItem, len(chunks))
	for i, ch := range chunks {
		sources[i] = sourceItem{
			TicketID: ch.TicketID,
			Status:   ch.Status,
			Score:    ch.Score,
			Text:     ch.Text,
		}
	}

	cited := answer.CitedTicketIDs
	if cited == nil {
		cited = []string{}
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:         answer.Text,
		CitedTicketIDs: cited,
		Sources:        sources,
	})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
		s.logger.Warn("health check degraded", zap.Any("checks", report.Checks))
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, reqLog *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, codeEmptyQuery, domain.ErrEmptyQuery.Error())

	case errors.Is(err, domain.ErrIndexNotReady):
		writeError(w, http.StatusServiceUnavailable, codeIndexNotReady, domain.ErrIndexNotReady.Error())

	case errors.Is(err, domain.ErrEmbeddingProviderError),
		errors.Is(err, domain.ErrGenerationProviderError),
		errors.Is(err, domain.ErrProviderTransient):
		reqLog.Warn("provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, codeProviderError, "upstream provider error")

	default:
		reqLog.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
