package rag_test

import (
	"errors"
	"strings"
	"testing"

	"urbanisme/internal/domain/rag"
)

func TestChunkerRejectsBadGeometry(t *testing.T) {
	cases := []struct {
		name      string
		size, ovl int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap above size", 10, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := rag.NewChunker(tc.size, tc.ovl); !errors.Is(err, rag.ErrChunkConfig) {
				t.Errorf("NewChunker(%d, %d): expected ErrChunkConfig, got %v", tc.size, tc.ovl, err)
			}
		})
	}
}

func TestChunkerEmptyInput(t *testing.T) {
	c, err := rag.NewChunker(100, 10)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}
	if chunks := c.Chunk(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestChunkerWindowGeometry(t *testing.T) {
	const chunkSize, overlap = 10, 3
	c, err := rag.NewChunker(chunkSize, overlap)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	text := strings.Repeat("abcdefg", 9) // 63 chars
	chunks := c.Chunk(text)

	// ceil(63 / (10-3)) = 9
	if len(chunks) != 9 {
		t.Fatalf("expected 9 chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if i < len(chunks)-1 && len([]rune(chunk)) != chunkSize {
			t.Errorf("chunk %d: expected length %d, got %d", i, chunkSize, len([]rune(chunk)))
		}
	}

	// adjacent chunks share exactly `overlap` characters
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		curr := []rune(chunks[i])
		tail := string(prev[len(prev)-overlap:])
		n := overlap
		if len(curr) < n {
			n = len(curr)
		}
		if string(curr[:n]) != tail[:len(string(curr[:n]))] && !strings.HasPrefix(string(curr), tail) {
			// the final chunk may be shorter than the overlap itself
			if len(curr) >= overlap {
				t.Errorf("chunks %d/%d do not overlap by %d chars", i-1, i, overlap)
			}
		}
	}
}

func TestChunkerNoOverlap(t *testing.T) {
	c, err := rag.NewChunker(4, 0)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	chunks := c.Chunk("abcdefghij")
	want := []string{"abcd", "efgh", "ij"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d (%q)", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestChunkerCountsRunesNotBytes(t *testing.T) {
	c, err := rag.NewChunker(5, 0)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	// 10 runes, more than 10 bytes
	chunks := c.Chunk("élévation…")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d (%q)", len(chunks), chunks)
	}
	if chunks[0] != "éléva" {
		t.Errorf("expected rune-aligned first chunk, got %q", chunks[0])
	}
}

func TestChunkerShortTextSingleChunk(t *testing.T) {
	c, err := rag.NewChunker(500, 50)
	if err != nil {
		t.Fatalf("NewChunker: %v", err)
	}

	chunks := c.Chunk("petit texte")
	if len(chunks) != 1 || chunks[0] != "petit texte" {
		t.Errorf("expected the whole text as one chunk, got %q", chunks)
	}
}
