package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank query string.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrIndexNotReady signals that no complete ingestion has populated the index.
	ErrIndexNotReady = errors.New("vector index not ready")
	// ErrModelMismatch signals that the configured embedding model differs
	// from the one the index was built with.
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrDimensionMismatch signals an embedding dimensionality mismatch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbeddingProviderError signals a permanent embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a permanent generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrProviderTransient signals a retryable provider failure
	// (timeout, rate limit, 5xx-class response).
	ErrProviderTransient = errors.New("transient provider error")
)
