package rag

import (
	"context"

	applog "urbanisme/internal/platform/log"
)

// Retriever answers "which snippets are relevant to this question". It is
// deliberately fail-open: a retrieval outage degrades answer quality but
// never aborts the request.
type Retriever struct {
	store    *DocumentStore
	embedder Embedder
	topK     int
}

func NewRetriever(store *DocumentStore, embedder Embedder, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{store: store, embedder: embedder, topK: topK}
}

// Retrieve returns the topK most relevant chunk texts, closest first. Any
// embedding or search failure returns an empty result set.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) []string {
	if topK <= 0 {
		topK = r.topK
	}

	vectors, err := r.embedder.Embed(ctx, []string{question})
	if err != nil || len(vectors) == 0 {
		applog.Warn("query embedding failed, retrieving nothing", "error", err)
		return nil
	}

	hits, err := r.store.Search(vectors[0], topK)
	if err != nil {
		applog.Warn("index search failed, retrieving nothing", "error", err)
		return nil
	}

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}
	return r.store.Texts(ids)
}
