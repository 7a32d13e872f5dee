package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkDeterministic(t *testing.T) {
	c := New(10, 3)
	text := words(95)

	first := c.Chunk(text)
	second := c.Chunk(text)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("chunking is not deterministic")
	}
	if len(first) == 0 {
		t.Fatal("expected chunks")
	}
}

func TestChunkCoversInput(t *testing.T) {
	c := New(10, 3)
	text := words(95)

	chunks := c.Chunk(text)

	seen := make(map[string]bool)
	for _, ch := range chunks {
		for _, tok := range strings.Fields(ch) {
			seen[tok] = true
		}
	}
	for _, tok := range strings.Fields(text) {
		if !seen[tok] {
			t.Errorf("token %q missing from all chunks", tok)
		}
	}
}

func TestChunkExactOverlap(t *testing.T) {
	c := New(10, 3)
	chunks := c.Chunk(words(40))

	if len(chunks) < 2 {
		t.Fatal("need at least 2 chunks")
	}
	for i := 0; i < len(chunks)-1; i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])
		if len(cur) < 10 {
			continue // final short window
		}
		tail := cur[len(cur)-3:]
		head := next[:3]
		if !reflect.DeepEqual(tail, head) {
			t.Errorf("chunks %d/%d share %v vs %v, want exactly 3 overlapping tokens", i, i+1, tail, head)
		}
	}
}

func TestChunkWindowSize(t *testing.T) {
	c := New(10, 3)
	chunks := c.Chunk(words(40))

	for i, ch := range chunks {
		n := len(strings.Fields(ch))
		if n > 10 {
			t.Errorf("chunk %d has %d tokens, max 10", i, n)
		}
	}
}

func TestChunkStepDegeneratesToOne(t *testing.T) {
	// overlap >= size: the step clamps to 1 and every window is emitted.
	c := New(3, 5)
	chunks := c.Chunk(words(6))

	if len(chunks) != 6 {
		t.Fatalf("expected 6 chunks with step 1, got %d", len(chunks))
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c := New(10, 3)

	if got := c.Chunk(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := c.Chunk("   \n\t  "); got != nil {
		t.Errorf("expected nil for whitespace input, got %v", got)
	}
}

func TestChunkShortInput(t *testing.T) {
	c := New(600, 80)
	chunks := c.Chunk("only a few words here")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "only a few words here" {
		t.Errorf("unexpected chunk %q", chunks[0])
	}
}
