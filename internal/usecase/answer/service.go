// Package answer synthesizes grounded answers from retrieved complaint
// chunks, with ticket-ID citations limited to the supplied context.
package answer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Service handles answer synthesis.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a synthesis service.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Synthesize produces an answer grounded in the given chunks. With no
// chunks it returns the fixed no-evidence answer without calling the
// generator at all. Transient provider failures are retried once.
// Cited ticket IDs are always a subset of the context ticket IDs.
func (s *Service) Synthesize(ctx context.Context, query string, chunks []domain.RetrievedChunk) (domain.SynthesizedAnswer, error) {
	if len(chunks) == 0 {
		return domain.SynthesizedAnswer{Text: domain.NoEvidenceAnswer}, nil
	}

	user := buildUserPrompt(query, chunks)

	result, err := s.generateWithRetry(ctx, user)
	if err != nil {
		return domain.SynthesizedAnswer{}, fmt.Errorf("generate answer: %w", err)
	}

	contextIDs := domain.TicketIDs(chunks)
	cited := extractCitations(result.Text, contextIDs)

	s.logger.Debug("synthesized answer",
		zap.Int("context_chunks", len(chunks)),
		zap.Int("cited_tickets", len(cited)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return domain.SynthesizedAnswer{
		Text:           result.Text,
		CitedTicketIDs: cited,
	}, nil
}

func (s *Service) generateWithRetry(ctx context.Context, user string) (domain.GenerationResult, error) {
	result, err := s.gen.Generate(ctx, systemPrompt, user)
	if err == nil || !errors.Is(err, domain.ErrProviderTransient) {
		return result, err
	}

	s.logger.Warn("transient generation failure, retrying once", zap.Error(err))
	return s.gen.Generate(ctx, systemPrompt, user)
}
