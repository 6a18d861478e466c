// Package health aggregates component health checks for the serving API.
package health

import (
	"context"
	"errors"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckNotReady indicates the vector index has not been built yet.
	// The service still serves queries; they return the no-evidence answer.
	CheckNotReady CheckResult = "not_ready"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	index     IndexReader
}

// New creates a Service. embedding and index can be nil.
func New(db DBPinger, embedding EmbeddingChecker, index IndexReader) *Service {
	return &Service{db: db, embedding: embedding, index: index}
}

// Check runs health checks against all components. A not-ready index
// does not degrade the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.index != nil {
		switch _, err := s.index.ReadMeta(ctx); {
		case err == nil:
			checks["index"] = CheckOK
		case errors.Is(err, domain.ErrIndexNotReady):
			checks["index"] = CheckNotReady
		default:
			checks["index"] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
