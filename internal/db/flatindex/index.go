// Package flatindex is a brute-force vector index: every search scans every
// stored vector. Exact and simple, which beats asymptotics at the few
// thousand chunks this corpus holds.
package flatindex

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"sync"

	"urbanisme/internal/domain/rag"
)

// Index stores embedding vectors under explicit chunk ids. The dimension is
// fixed at construction and every vector must match it.
type Index struct {
	mu      sync.RWMutex
	dim     int
	ids     []string
	vectors [][]float32
}

func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid index dimension %d", dim)
	}
	return &Index{dim: dim}, nil
}

func (idx *Index) Dim() int {
	return idx.dim
}

// Add appends a batch. ids and vectors must be parallel.
func (idx *Index) Add(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	for _, v := range vectors {
		if len(v) != idx.dim {
			return fmt.Errorf("%w: got %d, index dimension %d", rag.ErrDimensionMismatch, len(v), idx.dim)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ids = append(idx.ids, ids...)
	idx.vectors = append(idx.vectors, vectors...)
	return nil
}

// Search returns up to k hits ordered by squared Euclidean distance,
// closest first. An empty index yields no hits, not an error.
func (idx *Index) Search(query []float32, k int) ([]rag.Hit, error) {
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d, index dimension %d", rag.ErrDimensionMismatch, len(query), idx.dim)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil, nil
	}

	hits := make([]rag.Hit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = rag.Hit{ID: idx.ids[i], Distance: sqDistance(query, v)}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if k > 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Remove drops the given ids, reporting how many were present.
func (idx *Index) Remove(ids []string) int {
	victims := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		victims[id] = struct{}{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	removed := 0
	keptIDs := idx.ids[:0]
	keptVectors := idx.vectors[:0]
	for i, id := range idx.ids {
		if _, gone := victims[id]; gone {
			removed++
			continue
		}
		keptIDs = append(keptIDs, id)
		keptVectors = append(keptVectors, idx.vectors[i])
	}
	idx.ids = keptIDs
	idx.vectors = keptVectors
	return removed
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ids = nil
	idx.vectors = nil
}

// persistedIndex is the on-disk shape; gob keeps it an opaque blob.
type persistedIndex struct {
	Dim     int
	IDs     []string
	Vectors [][]float32
}

// Save writes the raw vector data so the index survives restarts.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	snapshot := persistedIndex{Dim: idx.dim, IDs: idx.ids, Vectors: idx.vectors}
	idx.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(&snapshot); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

// Load replaces the contents with the persisted data. A missing file leaves
// the index empty so first-run ingestion always succeeds.
func (idx *Index) Load(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()

	var snapshot persistedIndex
	if err := gob.NewDecoder(f).Decode(&snapshot); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}
	if snapshot.Dim != idx.dim {
		return fmt.Errorf("%w: file has dimension %d, index expects %d", rag.ErrDimensionMismatch, snapshot.Dim, idx.dim)
	}

	idx.mu.Lock()
	idx.ids = snapshot.IDs
	idx.vectors = snapshot.Vectors
	idx.mu.Unlock()
	return nil
}

func sqDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
