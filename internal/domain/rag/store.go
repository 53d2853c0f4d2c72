package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "urbanisme/internal/platform/log"
)

const (
	indexFile  = "index.bin"
	chunksFile = "chunks.json"
)

// DocumentStore runs the ingestion pipeline (parse -> chunk -> embed ->
// index) and owns the mapping from chunk id to chunk content and metadata.
// The vector index owns only the embedding side of that pair.
type DocumentStore struct {
	mu       sync.RWMutex
	index    VectorIndex
	embedder Embedder
	chunker  *Chunker
	parsers  *ParserRegistry

	chunks map[string]Chunk
	order  []string // ids in insertion order, mirrors index positions

	persistDir string // "" disables persistence
}

func NewDocumentStore(index VectorIndex, embedder Embedder, chunker *Chunker, parsers *ParserRegistry) *DocumentStore {
	return &DocumentStore{
		index:    index,
		embedder: embedder,
		chunker:  chunker,
		parsers:  parsers,
		chunks:   make(map[string]Chunk),
	}
}

// SetPersistDir makes the store write the index blob and chunk sidecar to
// dir after every mutation.
func (s *DocumentStore) SetPersistDir(dir string) {
	s.persistDir = dir
}

// Ingest extracts, chunks, embeds and indexes one document. Re-ingesting the
// same file under the same session appends duplicate chunks; deleting the
// session is the supported way to refresh a document.
func (s *DocumentStore) Ingest(ctx context.Context, filename string, data []byte, session string) (*IngestResult, error) {
	parser, err := s.parsers.Get(filename)
	if err != nil {
		return nil, err
	}

	parsed, err := parser.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	text := strings.TrimSpace(parsed.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	pieces := s.chunker.Chunk(text)
	vectors, err := s.embedder.Embed(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", filename, err)
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	docID := uuid.New().String()
	now := time.Now()
	ids := make([]string, len(pieces))
	metas := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		ids[i] = fmt.Sprintf("%s_chunk_%d", docID, i)
		metas[i] = Chunk{
			ID:        ids[i],
			DocID:     docID,
			Text:      piece,
			Filename:  filename,
			Ordinal:   i,
			Session:   session,
			CreatedAt: now,
		}
	}

	s.mu.Lock()
	if err := s.index.Add(ids, vectors); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("index %s: %w", filename, err)
	}
	for _, meta := range metas {
		s.chunks[meta.ID] = meta
	}
	s.order = append(s.order, ids...)
	s.mu.Unlock()

	s.persist()

	applog.Info("document ingested",
		"file", filename,
		"doc_id", docID,
		"chunks", len(pieces),
		"session", session,
	)
	return &IngestResult{DocID: docID, ChunkCount: len(pieces), ByteSize: len(data)}, nil
}

// DeleteSession removes every chunk ingested under the session and reports
// the count; an unknown session removes nothing and returns 0.
func (s *DocumentStore) DeleteSession(session string) int {
	s.mu.Lock()
	var victims []string
	for id, chunk := range s.chunks {
		if chunk.Session == session {
			victims = append(victims, id)
		}
	}
	for _, id := range victims {
		delete(s.chunks, id)
	}
	if len(victims) > 0 {
		s.index.Remove(victims)
		kept := s.order[:0]
		for _, id := range s.order {
			if _, ok := s.chunks[id]; ok {
				kept = append(kept, id)
			}
		}
		s.order = kept
	}
	s.mu.Unlock()

	if len(victims) > 0 {
		s.persist()
		applog.Info("session documents deleted", "session", session, "chunks", len(victims))
	}
	return len(victims)
}

// Count reports the total number of indexed chunks.
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search runs a nearest-neighbor query against the backing index.
func (s *DocumentStore) Search(query []float32, k int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(query, k)
}

// Texts resolves hit ids back to chunk text, skipping ids that vanished
// between search and lookup.
func (s *DocumentStore) Texts(ids []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	texts := make([]string, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			texts = append(texts, chunk.Text)
		}
	}
	return texts
}

// Load restores the index blob and chunk sidecar from the persist dir. Any
// inconsistency between the two files degrades to an empty store; a missing
// dir is simply a first run.
func (s *DocumentStore) Load() error {
	if s.persistDir == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Load(filepath.Join(s.persistDir, indexFile)); err != nil {
		applog.Warn("index load failed, starting empty", "error", err)
		s.index.Clear()
		return nil
	}

	var metas []Chunk
	data, err := os.ReadFile(filepath.Join(s.persistDir, chunksFile))
	switch {
	case os.IsNotExist(err):
		// fine as long as the index is empty too
	case err != nil:
		applog.Warn("chunk sidecar read failed, starting empty", "error", err)
	default:
		if err := json.Unmarshal(data, &metas); err != nil {
			applog.Warn("chunk sidecar corrupt, starting empty", "error", err)
			metas = nil
		}
	}

	if s.index.Len() != len(metas) {
		if s.index.Len() > 0 || len(metas) > 0 {
			applog.Warn("index and chunk sidecar disagree, starting empty",
				"index_len", s.index.Len(), "chunks", len(metas))
		}
		s.index.Clear()
		s.chunks = make(map[string]Chunk)
		s.order = nil
		return nil
	}

	s.chunks = make(map[string]Chunk, len(metas))
	s.order = make([]string, 0, len(metas))
	for _, meta := range metas {
		s.chunks[meta.ID] = meta
		s.order = append(s.order, meta.ID)
	}
	applog.Info("document store loaded", "chunks", len(metas), "dir", s.persistDir)
	return nil
}

// Save writes both files; used by persist and by the offline indexer. The
// lock is held across both writes so the blob and the sidecar always come
// from the same snapshot; a half-updated pair would be discarded on Load.
func (s *DocumentStore) Save() error {
	if s.persistDir == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]Chunk, 0, len(s.order))
	for _, id := range s.order {
		metas = append(metas, s.chunks[id])
	}

	if err := os.MkdirAll(s.persistDir, 0o755); err != nil {
		return fmt.Errorf("create persist dir: %w", err)
	}
	if err := s.index.Save(filepath.Join(s.persistDir, indexFile)); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	data, err := json.Marshal(metas)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.persistDir, chunksFile), data, 0o644); err != nil {
		return fmt.Errorf("write chunk sidecar: %w", err)
	}
	return nil
}

func (s *DocumentStore) persist() {
	if err := s.Save(); err != nil {
		applog.Warn("document store persist failed", "error", err)
	}
}
