// Package ingest rebuilds the vector index from normalized complaint
// records: chunk, embed, persist, then write the index meta.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
	"github.com/luizgdev/rag-feedback-analyzer/internal/metrics"
)

// Config holds the ingestion settings.
type Config struct {
	Model      string
	Dimensions int
	BatchSize  int
}

// Report summarizes one ingestion run.
type Report struct {
	Records     int
	Chunks      int
	TotalTokens int
	Duration    time.Duration
}

// Service rebuilds the index. Every run is a full rebuild: the old
// index is purged first and the meta key is written last, so a crash
// mid-run leaves a detectable partial index instead of a stale mix.
type Service struct {
	repo    Repository
	chunker Chunker
	embed   Embedder
	cfg     Config
	logger  *zap.Logger
}

// New creates an ingestion service.
func New(repo Repository, chunker Chunker, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	return &Service{repo: repo, chunker: chunker, embed: embed, cfg: cfg, logger: logger}
}

// pendingChunk is a chunk awaiting its embedding vector.
type pendingChunk struct {
	ticketID   string
	chunkIndex int
	text       string
	status     string
}

// Run rebuilds the whole index from the given records. Any embedding
// or storage error aborts the run; the meta key is then absent, which
// marks the index as not ready.
func (s *Service) Run(ctx context.Context, records []domain.ComplaintRecord, source string) (Report, error) {
	start := time.Now()

	if err := s.repo.Purge(ctx); err != nil {
		return Report{}, fmt.Errorf("purge previous index: %w", err)
	}
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return Report{}, fmt.Errorf("create index: %w", err)
	}

	pending := s.chunkRecords(records)
	s.logger.Info("starting index rebuild",
		zap.Int("records", len(records)),
		zap.Int("chunks", len(pending)),
		zap.String("source", source),
	)

	report := Report{Records: len(records)}
	for batchStart := 0; batchStart < len(pending); batchStart += s.cfg.BatchSize {
		batchEnd := min(batchStart+s.cfg.BatchSize, len(pending))

		tokens, err := s.processBatch(ctx, pending[batchStart:batchEnd])
		if err != nil {
			return report, fmt.Errorf("batch %d-%d: %w", batchStart, batchEnd, err)
		}
		report.Chunks += batchEnd - batchStart
		report.TotalTokens += tokens
	}

	meta := domain.IndexMeta{
		Model:      s.cfg.Model,
		Dimensions: s.cfg.Dimensions,
		Chunks:     report.Chunks,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.WriteMeta(ctx, meta); err != nil {
		return report, fmt.Errorf("write index meta: %w", err)
	}

	report.Duration = time.Since(start)
	s.logger.Info("index rebuild complete",
		zap.Int("chunks", report.Chunks),
		zap.Int("total_tokens", report.TotalTokens),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) chunkRecords(records []domain.ComplaintRecord) []pendingChunk {
	var pending []pendingChunk
	for i := range records {
		rec := &records[i]
		for idx, text := range s.chunker.Split(rec.Text) {
			pending = append(pending, pendingChunk{
				ticketID:   rec.TicketID,
				chunkIndex: idx,
				text:       text,
				status:     rec.Status,
			})
		}
	}
	return pending
}

func (s *Service) processBatch(ctx context.Context, batch []pendingChunk) (int, error) {
	batchStart := time.Now()

	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].text
	}

	result, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(result.Embeddings) != len(batch) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks: %w",
			len(result.Embeddings), len(batch), domain.ErrEmbeddingProviderError)
	}

	chunks := make([]domain.EmbeddedChunk, len(batch))
	for i := range batch {
		chunks[i] = domain.EmbeddedChunk{
			TicketID:   batch[i].ticketID,
			ChunkIndex: batch[i].chunkIndex,
			Text:       batch[i].text,
			Status:     batch[i].status,
			Vector:     result.Embeddings[i],
		}
	}

	if err := s.repo.UpsertBatch(ctx, chunks); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}

	metrics.IngestChunksWritten.Add(float64(len(chunks)))
	metrics.IngestBatchDuration.Observe(time.Since(batchStart).Seconds())
	return result.TotalTokens, nil
}
