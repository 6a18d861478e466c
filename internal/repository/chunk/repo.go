// Package chunk persists embedded complaint chunks in the vector store
// and runs similarity search over them.
package chunk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luizgdev/rag-feedback-analyzer/internal/db"
	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string) (int, error)
}

const delBatchSize = 500

// Repo implements chunk persistence over a hash+FT store.
type Repo struct {
	store      store
	prefix     string
	dimensions int

	hnswM           int
	hnswEFConstruct int
}

// New creates a chunk repository. All keys and the index name carry
// the given prefix, so several corpora can share one database.
func New(s store, prefix string, dimensions int) *Repo {
	return &Repo{store: s, prefix: prefix, dimensions: dimensions}
}

// WithHNSW sets the HNSW graph parameters used at index creation.
func (r *Repo) WithHNSW(m, efConstruct int) *Repo {
	r.hnswM = m
	r.hnswEFConstruct = efConstruct
	return r
}

func (r *Repo) indexName() string { return r.prefix + "idx" }
func (r *Repo) metaKey() string   { return r.prefix + "index:meta" }
func (r *Repo) chunkPrefix() string {
	return r.prefix + "chunk:"
}

// EnsureIndex creates the vector index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.chunkPrefix()},
		Fields: []db.IndexField{
			{Name: fieldTicket, Type: db.IndexFieldTag},
			{Name: fieldStatus, Type: db.IndexFieldTag},
			{Name: fieldChunkIdx, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnswM,
				VectorEFConstruct: r.hnswEFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName(), err)
	}
	return nil
}

// Purge drops the index and deletes every chunk hash and the meta key.
// A missing index is not an error, so Purge is safe on a fresh store.
func (r *Repo) Purge(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", r.indexName(), err)
	}

	keys, err := r.store.Scan(ctx, r.chunkPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan chunk keys: %w", err)
	}
	keys = append(keys, r.metaKey())

	for start := 0; start < len(keys); start += delBatchSize {
		end := min(start+delBatchSize, len(keys))
		if err := r.store.Del(ctx, keys[start:end]...); err != nil {
			return fmt.Errorf("delete chunk keys: %w", err)
		}
	}
	return nil
}

// UpsertBatch writes a batch of embedded chunks in one pipeline. Every
// vector must match the repository dimensionality.
func (r *Repo) UpsertBatch(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(chunks))
	for i := range chunks {
		ch := &chunks[i]
		if len(ch.Vector) != r.dimensions {
			return fmt.Errorf("chunk %s/%d has %d dimensions, index expects %d: %w",
				ch.TicketID, ch.ChunkIndex, len(ch.Vector), r.dimensions, domain.ErrDimensionMismatch)
		}
		items = append(items, db.HashSetItem{
			Key:    r.chunkKey(ch.TicketID, ch.ChunkIndex),
			Fields: chunkToFields(ch),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write chunk batch: %w", err)
	}
	return nil
}

// SearchKNN returns the k nearest chunks by cosine similarity, best
// first. A missing index means an empty corpus, not an error.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if len(vector) != r.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, index expects %d: %w",
			len(vector), r.dimensions, domain.ErrDimensionMismatch)
	}

	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            k,
		ReturnFields: []string{fieldTicket, fieldText, fieldStatus, db.VectorScoreField},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("knn search: %w", err)
	}

	retrieved := make([]domain.RetrievedChunk, 0, len(result.Entries))
	for _, entry := range result.Entries {
		retrieved = append(retrieved, entryToRetrieved(entry))
	}
	return retrieved, nil
}

// Count returns the number of indexed chunks. Zero when the index is
// absent.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName())
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// WriteMeta persists the index descriptor. Ingestion calls this last,
// so a present meta key marks a complete index.
func (r *Repo) WriteMeta(ctx context.Context, meta domain.IndexMeta) error {
	data, err := json.Marshal(metaToDTO(meta))
	if err != nil {
		return fmt.Errorf("marshal index meta: %w", err)
	}
	if err := r.store.Set(ctx, r.metaKey(), data); err != nil {
		return fmt.Errorf("write index meta: %w", err)
	}
	return nil
}

// ReadMeta loads the index descriptor. An absent key means ingestion
// has not completed, reported as domain.ErrIndexNotReady.
func (r *Repo) ReadMeta(ctx context.Context) (domain.IndexMeta, error) {
	data, err := r.store.Get(ctx, r.metaKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.IndexMeta{}, domain.ErrIndexNotReady
		}
		return domain.IndexMeta{}, fmt.Errorf("read index meta: %w", err)
	}

	var dto metaDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.IndexMeta{}, fmt.Errorf("unmarshal index meta: %w", err)
	}
	return dto.toDomain(), nil
}
