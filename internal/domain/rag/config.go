package rag

import "fmt"

// Config holds the ingestion and retrieval settings.
type Config struct {
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
	TopK         int    `json:"top_k"`
	IndexPath    string `json:"index_path"`    // directory for the index blob + chunk sidecar
	MaxFileSize  int    `json:"max_file_size"` // upload cap, MB
}

// DefaultConfig mirrors the geometry the corpus was originally built with.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:    500,
		ChunkOverlap: 50,
		TopK:         5,
		IndexPath:    "vector_store",
		MaxFileSize:  20,
	}
}

// Validate rejects settings that would make ingestion loop or misbehave.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: size=%d overlap=%d", ErrChunkConfig, c.ChunkSize, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	return nil
}
