package chunk

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/luizgdev/rag-feedback-analyzer/internal/db"
	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Hash field names. The index schema in EnsureIndex must stay in sync.
const (
	fieldTicket   = "ticket"
	fieldChunkIdx = "idx"
	fieldText     = "text"
	fieldStatus   = "status"
	fieldVector   = "vector"
)

func (r *Repo) chunkKey(ticketID string, chunkIndex int) string {
	return fmt.Sprintf("%s%s:%d", r.chunkPrefix(), ticketID, chunkIndex)
}

func chunkToFields(ch *domain.EmbeddedChunk) map[string]string {
	return map[string]string{
		fieldTicket:   ch.TicketID,
		fieldChunkIdx: strconv.Itoa(ch.ChunkIndex),
		fieldText:     ch.Text,
		fieldStatus:   ch.Status,
		fieldVector:   vectorToBytes(ch.Vector),
	}
}

func entryToRetrieved(entry db.SearchEntry) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		TicketID: entry.Fields[fieldTicket],
		Text:     entry.Fields[fieldText],
		Status:   entry.Fields[fieldStatus],
		Score:    entry.Score,
	}
}

// vectorToBytes packs float32 components little-endian, the layout
// FT.SEARCH expects for FLOAT32 vector fields.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// metaDTO is the JSON shape of the persisted index descriptor.
type metaDTO struct {
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Chunks     int       `json:"chunks"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
}

func metaToDTO(m domain.IndexMeta) metaDTO {
	return metaDTO{
		Model:      m.Model,
		Dimensions: m.Dimensions,
		Chunks:     m.Chunks,
		Source:     m.Source,
		CreatedAt:  m.CreatedAt,
	}
}

func (d metaDTO) toDomain() domain.IndexMeta {
	return domain.IndexMeta{
		Model:      d.Model,
		Dimensions: d.Dimensions,
		Chunks:     d.Chunks,
		Source:     d.Source,
		CreatedAt:  d.CreatedAt,
	}
}
