// Package chunker splits raw text into overlapping fixed-size word windows,
// the unit of embedding for long text.
package chunker

import "strings"

const (
	DefaultSize    = 600
	DefaultOverlap = 80
)

// WordChunker emits sliding windows of size tokens advancing by size-overlap
// tokens per step. The step never drops below one token, so chunking always
// terminates even when overlap >= size.
type WordChunker struct {
	size    int
	overlap int
}

func New(size, overlap int) *WordChunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &WordChunker{size: size, overlap: overlap}
}

// Chunk splits text on whitespace and returns the window sequence. It is pure
// and deterministic: the same input always yields the same chunks. Windows
// that are empty after trimming are skipped.
func (c *WordChunker) Chunk(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := c.size - c.overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(tokens); i += step {
		end := i + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := strings.Join(tokens[i:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
