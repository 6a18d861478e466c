package answer

import (
	"context"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Generator produces the answer text from a system and user prompt.
type Generator interface {
	Generate(ctx context.Context, system, user string) (domain.GenerationResult, error)
}
