// Package retrieve embeds user questions and finds the most similar
// complaint chunks in the vector index.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Service handles query-time retrieval.
type Service struct {
	repo     Repository
	embed    Embedder
	defaultK int
	maxK     int
	logger   *zap.Logger
}

// New creates a retrieval service. defaultK is used when the caller
// passes k <= 0; requests above maxK are clamped.
func New(repo Repository, embed Embedder, defaultK, maxK int, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		embed:    embed,
		defaultK: defaultK,
		maxK:     maxK,
		logger:   logger,
	}
}

// Retrieve embeds the query and returns the k most similar chunks,
// best first. An empty corpus yields an empty slice, not an error.
// Transient provider failures are retried once.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	if k <= 0 {
		k = s.defaultK
	}
	if k > s.maxK {
		k = s.maxK
	}

	result, err := s.embedWithRetry(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.repo.SearchKNN(ctx, result.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	s.logger.Debug("retrieved chunks",
		zap.Int("requested_k", k),
		zap.Int("returned", len(chunks)),
	)
	return chunks, nil
}

func (s *Service) embedWithRetry(ctx context.Context, query string) (domain.EmbeddingResult, error) {
	result, err := s.embed.Embed(ctx, query)
	if err == nil || !errors.Is(err, domain.ErrProviderTransient) {
		return result, err
	}

	s.logger.Warn("transient embedding failure, retrying once", zap.Error(err))
	return s.embed.Embed(ctx, query)
}

// VerifyIndex checks that the persisted index was built with the
// configured model and dimensionality. Serving a query embedded in a
// different space returns garbage similarities, so a mismatch is fatal.
func (s *Service) VerifyIndex(ctx context.Context, model string, dimensions int) (domain.IndexMeta, error) {
	meta, err := s.repo.ReadMeta(ctx)
	if err != nil {
		return domain.IndexMeta{}, err
	}

	if meta.Model != model {
		return meta, fmt.Errorf("index built with model %q, configured %q: %w",
			meta.Model, model, domain.ErrModelMismatch)
	}
	if meta.Dimensions != dimensions {
		return meta, fmt.Errorf("index has %d dimensions, configured %d: %w",
			meta.Dimensions, dimensions, domain.ErrDimensionMismatch)
	}
	return meta, nil
}
