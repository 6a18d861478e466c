package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// The same provider and model must back ingestion and query embedding;
// the index meta check enforces this at serving startup.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes many texts in one provider call. Ingestion
// uses it to embed whole chunk batches.
type BatchEmbedder interface {
	Embedder
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries one vector per input text, in input
// order, plus aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// Generator is the generative-language-model contract. Stateless: every call
// is an independent request with no conversational memory.
type Generator interface {
	Generate(ctx context.Context, system, user string) (GenerationResult, error)
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
