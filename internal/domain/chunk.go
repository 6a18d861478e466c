package domain

import "time"

// EmbeddedChunk is a contiguous span of a complaint text with its embedding
// vector. Chunks are created during ingestion, immutable afterwards, and
// removed only by a full index rebuild.
type EmbeddedChunk struct {
	TicketID   string
	ChunkIndex int
	Text       string
	Status     string
	Vector     []float32
}

// IndexMeta describes the embedding space of the persisted vector index.
// It is written last during ingestion, so its presence marks a complete
// index; serving refuses to start against a mismatched or absent meta.
type IndexMeta struct {
	Model      string
	Dimensions int
	Chunks     int
	Source     string
	CreatedAt  time.Time
}
