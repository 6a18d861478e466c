package ingest

import (
	"context"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Repository defines the storage contract for index rebuilds.
type Repository interface {
	Purge(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	UpsertBatch(ctx context.Context, chunks []domain.EmbeddedChunk) error
	WriteMeta(ctx context.Context, meta domain.IndexMeta) error
}

// Chunker splits complaint text into embedding-sized pieces.
type Chunker interface {
	Split(text string) []string
}

// Embedder vectorizes chunk batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
