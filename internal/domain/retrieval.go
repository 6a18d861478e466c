package domain

// RetrievedChunk is one nearest-neighbor hit with its similarity score
// (cosine similarity, clamped to [0,1]).
type RetrievedChunk struct {
	TicketID string
	Text     string
	Status   string
	Score    float64
}

// TicketIDs returns the unique ticket IDs of the chunks in first-seen order.
// Several chunks of one long complaint collapse into a single ID.
func TicketIDs(chunks []RetrievedChunk) []string {
	seen := make(map[string]bool, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.TicketID == "" || seen[c.TicketID] {
			continue
		}
		seen[c.TicketID] = true
		ids = append(ids, c.TicketID)
	}
	return ids
}
