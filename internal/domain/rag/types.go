package rag

import "time"

// Chunk is one indexed segment of an ingested document. Chunks are created
// at ingestion time and never mutated; they disappear only when their
// session is deleted.
type Chunk struct {
	ID        string    `json:"id"`
	DocID     string    `json:"doc_id"`
	Text      string    `json:"text"`
	Filename  string    `json:"filename"`
	Ordinal   int       `json:"ordinal"`
	Session   string    `json:"session,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IngestResult summarizes a single document ingestion.
type IngestResult struct {
	DocID      string `json:"doc_id"`
	ChunkCount int    `json:"chunk_count"`
	ByteSize   int    `json:"byte_size"`
}

// Hit is one nearest-neighbor result: chunk id plus squared Euclidean
// distance to the query vector.
type Hit struct {
	ID       string
	Distance float32
}
