package health

import (
	"context"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// DBPinger checks vector store connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexReader reads the persisted index descriptor.
type IndexReader interface {
	ReadMeta(ctx context.Context) (domain.IndexMeta, error)
}
