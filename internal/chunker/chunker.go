// Package chunker splits complaint text into embedding-sized pieces.
package chunker

import (
	"errors"
	"unicode"
)

// DefaultChunkSize is the rune budget per chunk.
const DefaultChunkSize = 1000

// WindowChunker splits text into consecutive windows of at most size
// runes, without overlap. Windows prefer to break at a word boundary;
// a single word longer than the budget is split mid-word.
type WindowChunker struct {
	size int
}

// New creates a WindowChunker with the given rune budget per chunk.
func New(size int) (*WindowChunker, error) {
	if size <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	return &WindowChunker{size: size}, nil
}

// Split chunks text. Empty or whitespace-only text yields no chunks.
// Text at or under the budget yields exactly one chunk.
func (c *WindowChunker) Split(text string) []string {
	runes := []rune(text)
	if len(trimSpace(runes)) == 0 {
		return nil
	}
	runes = trimSpace(runes)

	if len(runes) <= c.size {
		return []string{string(runes)}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= c.size {
			chunks = append(chunks, string(runes))
			break
		}

		cut := c.size
		if i := lastBoundary(runes[:cut+1]); i > 0 {
			cut = i
		}

		chunk := trimSpace(runes[:cut])
		if len(chunk) > 0 {
			chunks = append(chunks, string(chunk))
		}
		runes = trimSpace(runes[cut:])
	}
	return chunks
}

// lastBoundary returns the index of the last whitespace rune in s, or
// -1 when s holds a single unbroken word.
func lastBoundary(s []rune) int {
	for i := len(s) - 1; i >= 0; i-- {
		if unicode.IsSpace(s[i]) {
			return i
		}
	}
	return -1
}

func trimSpace(s []rune) []rune {
	start := 0
	for start < len(s) && unicode.IsSpace(s[start]) {
		start++
	}
	end := len(s)
	for end > start && unicode.IsSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}
