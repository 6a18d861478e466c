package answer

import "strings"

// extractCitations returns the context ticket IDs mentioned in the
// answer text, in context order, each at most once. Matching is
// boundary aware: ticket "100" does not match inside "1000".
func extractCitations(text string, contextIDs []string) []string {
	var cited []string
	seen := make(map[string]struct{}, len(contextIDs))

	for _, id := range contextIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if mentionsID(text, id) {
			seen[id] = struct{}{}
			cited = append(cited, id)
		}
	}
	return cited
}

// mentionsID reports whether id occurs in text with non-word characters
// (or text edges) on both sides.
func mentionsID(text, id string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], id)
		if i < 0 {
			return false
		}
		i += start

		end := i + len(id)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(text string, i int) bool {
	return i == 0 || !isWordByte(text[i-1])
}

func boundaryAfter(text string, end int) bool {
	return end >= len(text) || !isWordByte(text[end])
}

func isWordByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b == '_':
		return true
	default:
		return false
	}
}
