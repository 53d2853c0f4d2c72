// Command indexer builds the vector store offline from a folder of
// documents, so the server starts with a populated corpus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"urbanisme/internal/db/flatindex"
	"urbanisme/internal/domain/rag"
	"urbanisme/internal/platform/config"
	applog "urbanisme/internal/platform/log"
)

func main() {
	docsDir := flag.String("docs", "", "folder of documents to ingest (required)")
	outDir := flag.String("out", "", "vector store directory (default: VECTOR_STORE_PATH)")
	session := flag.String("session", "", "optional session id for the ingested chunks")
	flag.Parse()

	if *docsDir == "" {
		fmt.Fprintln(os.Stderr, "usage: indexer -docs <folder> [-out <dir>] [-session <id>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	applog.Init(applog.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.Embedding.APIKey == "" {
		applog.Fatalf("no embedding API key set, cannot build the index")
	}
	if *outDir != "" {
		cfg.RAG.IndexPath = *outDir
	}

	chunker, err := rag.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		applog.Fatalf("invalid chunker configuration: %v", err)
	}
	index, err := flatindex.New(cfg.Embedding.Dims)
	if err != nil {
		applog.Fatalf("invalid index configuration: %v", err)
	}
	embedder := rag.NewOpenAIEmbedder(rag.OpenAIEmbedderConfig{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Dims:    cfg.Embedding.Dims,
	})

	store := rag.NewDocumentStore(index, embedder, chunker, rag.NewParserRegistry())
	store.SetPersistDir(cfg.RAG.IndexPath)
	if err := store.Load(); err != nil {
		applog.Warnf("vector store load failed: %v", err)
	}

	ctx := context.Background()
	ingested, skipped, failed := 0, 0, 0

	walkErr := filepath.Walk(*docsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			applog.Warn("error accessing path", "path", path, "error", err)
			failed++
			return nil
		}
		if info.IsDir() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			applog.Warn("read failed", "path", path, "error", err)
			failed++
			return nil
		}

		result, err := store.Ingest(ctx, filepath.Base(path), data, *session)
		switch {
		case errors.Is(err, rag.ErrUnsupportedFormat):
			skipped++
		case errors.Is(err, rag.ErrEmptyDocument):
			applog.Warn("no extractable text, skipping", "path", path)
			skipped++
		case err != nil:
			// one bad document must not abort the rest of the corpus
			applog.Warn("ingestion failed", "path", path, "error", err)
			failed++
		default:
			applog.Info("ingested", "path", path, "chunks", result.ChunkCount)
			ingested++
		}
		return nil
	})
	if walkErr != nil {
		applog.Fatalf("walk %s: %v", *docsDir, walkErr)
	}

	if err := store.Save(); err != nil {
		applog.Fatalf("save vector store: %v", err)
	}

	applog.Infof("index saved to %s (files: %d ingested, %d skipped, %d failed; chunks: %d)",
		cfg.RAG.IndexPath, ingested, skipped, failed, store.Count())
}
