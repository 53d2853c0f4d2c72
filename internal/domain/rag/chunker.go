package rag

import "fmt"

// Chunker splits extracted text into fixed-size overlapping windows. The
// overlap keeps facts that straddle a boundary retrievable from at least
// one chunk.
type Chunker struct {
	chunkSize int // max characters per chunk
	overlap   int // characters shared with the previous chunk
}

// NewChunker validates the window geometry up front; a bad pair is a
// configuration error, not something to silently repair.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrChunkConfig, chunkSize, overlap)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunk materializes all windows eagerly. Offsets advance by
// chunkSize-overlap; the final chunk may be shorter. Counting is over runes
// so accented text splits on characters, not bytes. Empty input yields nil.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
