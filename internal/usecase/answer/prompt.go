package answer

import (
	"fmt"
	"strings"

	"github.com/luizgdev/rag-feedback-analyzer/internal/domain"
)

// systemPrompt frames the model as a grounded analyst. Citing ticket
// IDs is part of the contract; the post-filter in citations.go keeps
// only IDs that actually appear in the supplied context.
const systemPrompt = `You are a customer experience analyst for a telecom provider.
Answer the question using ONLY the complaint records in the context below.
Reference supporting records as Ticket #<id>.
If the context does not contain enough information to answer, say so plainly.
Do not invent complaints, ticket numbers, or statistics.`

// buildUserPrompt renders retrieved chunks into context lines and
// appends the question. Chunk order (best match first) is preserved.
func buildUserPrompt(query string, chunks []domain.RetrievedChunk) string {
	var b strings.Builder

	b.WriteString("Context:\n")
	for _, ch := range chunks {
		status := ch.Status
		if status == "" {
			status = "Unknown"
		}
		fmt.Fprintf(&b, "[Ticket #%s | Status: %s] Complaint: %s\n", ch.TicketID, status, ch.Text)
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
