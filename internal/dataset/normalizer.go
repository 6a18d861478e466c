package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// Metadata columns carried through onto records when present.
const (
	colStatus = "status"
	colDate   = "date"
	colState  = "state"
)

// Report counts normalization outcomes per row.
type Report struct {
	Kept             int
	SkippedEmptyText int
	SkippedNoID      int
	SkippedDuplicate int
}

// Total returns the number of rows seen.
func (r Report) Total() int {
	return r.Kept + r.SkippedEmptyText + r.SkippedNoID + r.SkippedDuplicate
}

// Normalizer turns raw dataset rows into complaint records. Rows with
// a missing ID, empty text after cleaning, or a ticket ID already seen
// are skipped and counted, never fatal.
type Normalizer struct {
	textColumn string
	idColumn   string
}

// NewNormalizer creates a Normalizer reading complaint text and ticket
// ID from the given normalized column names.
func NewNormalizer(textColumn, idColumn string) (*Normalizer, error) {
	if textColumn == "" {
		return nil, errors.New("text column is required")
	}
	if idColumn == "" {
		return nil, errors.New("id column is required")
	}
	return &Normalizer{
		textColumn: NormalizeHeader(textColumn),
		idColumn:   NormalizeHeader(idColumn),
	}, nil
}

// Normalize drains the reader and returns the kept records in input
// order together with a per-outcome report. Read errors abort.
func (n *Normalizer) Normalize(r Reader) ([]domain.ComplaintRecord, Report, error) {
	var (
		records []domain.ComplaintRecord
		report  Report
		seen    = make(map[string]struct{})
	)

	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, report, fmt.Errorf("read dataset row: %w", err)
		}

		rec, outcome := n.normalizeRow(row, seen)
		switch outcome {
		case outcomeKept:
			seen[rec.TicketID] = struct{}{}
			records = append(records, rec)
			report.Kept++
		case outcomeNoID:
			report.SkippedNoID++
		case outcomeEmptyText:
			report.SkippedEmptyText++
		case outcomeDuplicate:
			report.SkippedDuplicate++
		}
	}

	return records, report, nil
}

type rowOutcome string

// Outcome labels double as the metric label values for ingest counters.
const (
	outcomeKept      rowOutcome = "kept"
	outcomeNoID      rowOutcome = "skipped_no_id"
	outcomeEmptyText rowOutcome = "skipped_empty_text"
	outcomeDuplicate rowOutcome = "skipped_duplicate"
)

func (n *Normalizer) normalizeRow(row Row, seen map[string]struct{}) (domain.ComplaintRecord, rowOutcome) {
	id := domain.CleanText(row[n.idColumn])
	if id == "" {
		return domain.ComplaintRecord{}, outcomeNoID
	}

	text := domain.CleanText(row[n.textColumn])
	if text == "" {
		return domain.ComplaintRecord{}, outcomeEmptyText
	}

	if _, dup := seen[id]; dup {
		return domain.ComplaintRecord{}, outcomeDuplicate
	}

	rec, err := domain.NewComplaintRecord(id, text)
	if err != nil {
		return domain.ComplaintRecord{}, outcomeEmptyText
	}

	rec.Status = domain.CleanText(row[colStatus])
	rec.Date = domain.CleanText(row[colDate])
	rec.State = domain.CleanText(row[colState])
	return rec, outcomeKept
}
