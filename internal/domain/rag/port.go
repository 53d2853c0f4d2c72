package rag

// VectorIndex defines the storage operations the DocumentStore and Retriever
// need. The flat in-memory implementation lives in internal/db/flatindex; an
// external vector database can be substituted behind the same contract.
type VectorIndex interface {
	// Add appends a batch of vectors under the given chunk ids. Every vector
	// must match the index dimension.
	Add(ids []string, vectors [][]float32) error
	// Search returns the k nearest neighbors by squared Euclidean distance,
	// closest first. Fewer than k entries means all of them; an empty index
	// means no hits, not an error.
	Search(query []float32, k int) ([]Hit, error)
	// Remove drops the given ids and reports how many were present.
	Remove(ids []string) int
	Len() int
	Clear()
	// Save / Load persist the raw vector data. Loading a nonexistent path
	// leaves the index empty so first-run ingestion always succeeds.
	Save(path string) error
	Load(path string) error
}
