package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// ComplaintRecord is one normalized customer complaint ticket.
type ComplaintRecord struct {
	TicketID string
	Text     string

	// Optional metadata carried through from the source dataset.
	Status string
	Date   string
	State  string
}

// NewComplaintRecord validates and creates a ComplaintRecord.
// TicketID must be non-empty; Text must be non-empty after cleaning.
func NewComplaintRecord(ticketID, text string) (ComplaintRecord, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return ComplaintRecord{}, fmt.Errorf("ticket ID is required")
	}
	text = CleanText(text)
	if text == "" {
		return ComplaintRecord{}, fmt.Errorf("complaint text is required")
	}
	return ComplaintRecord{TicketID: ticketID, Text: text}, nil
}

// CleanText collapses whitespace runs into single spaces and strips
// control characters. Idempotent: cleaning cleaned text is a no-op.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
