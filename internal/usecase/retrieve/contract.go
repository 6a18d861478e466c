package retrieve

import (
	"context"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Repository defines the storage contract for retrieval.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)
	ReadMeta(ctx context.Context) (domain.IndexMeta, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
