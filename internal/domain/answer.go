package domain

// NoEvidenceAnswer is the fixed response returned when retrieval produced no
// supporting chunks. The generation provider is never called in that case.
const NoEvidenceAnswer = "No supporting complaint records were found for this question."

// SynthesizedAnswer is a grounded answer together with the ticket IDs it
// actually cites. CitedTicketIDs is always a subset of the ticket IDs of the
// retrieval context the answer was generated from.
type SynthesizedAnswer struct {
	Text           string
	CitedTicketIDs []string
}
