package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"urbanisme/internal/adapter/provider/llm/groq"
	"urbanisme/internal/api"
	"urbanisme/internal/db/flatindex"
	redisdb "urbanisme/internal/db/redis"
	"urbanisme/internal/domain/assistant"
	"urbanisme/internal/domain/rag"
	"urbanisme/internal/platform/config"
	applog "urbanisme/internal/platform/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	applog.Init(applog.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	cache := initCache(cfg)

	service := assistant.NewService(cache, assistant.Config{
		Model:    cfg.LLM.Model,
		TopK:     cfg.RAG.TopK,
		CacheTTL: time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second,
	})

	llmConfigured := false
	if cfg.LLM.APIKey != "" {
		service.SetLLM(groq.New(groq.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}))
		llmConfigured = true
		applog.Infof("LLM provider initialized (model: %s)", cfg.LLM.Model)
	} else {
		applog.Warn("no GROQ_API_KEY set, every answer will use the mock responder")
	}

	store := initDocuments(cfg, service)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	serverConfig.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second

	server := api.NewServer(serverConfig, service)
	server.SetHealthFlags(cache.Enabled(), llmConfigured)
	if store != nil {
		server.SetDocuments(store, cfg.RAG.MaxFileSize)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		applog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			applog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Fatalf("server error: %v", err)
	}

	applog.Info("server stopped")
}

// initCache probes Redis once at startup; when it is unreachable the cache
// degrades to a disabled implementation and the service keeps answering.
func initCache(cfg *config.AppConfig) *redisdb.AnswerCache {
	opt, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		applog.Warnf("invalid REDIS_URL, cache disabled: %v", err)
		return redisdb.NewAnswerCache(nil)
	}

	client := goredis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		applog.Warnf("Redis unreachable, cache disabled: %v", err)
		return redisdb.NewAnswerCache(nil)
	}

	applog.Info("connected to Redis, cache enabled")
	return redisdb.NewAnswerCache(client)
}

// initDocuments wires the ingestion/retrieval side when an embedding key is
// configured; without one the assistant still runs, cache + LLM/mock only.
func initDocuments(cfg *config.AppConfig, service *assistant.Service) *rag.DocumentStore {
	if cfg.Embedding.APIKey == "" {
		applog.Warn("no embedding API key set, document ingestion and retrieval disabled")
		return nil
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
	applog.Infof("document store ready (chunks: %d, path: %s)", store.Count(), cfg.RAG.IndexPath)

	service.SetRetriever(rag.NewRetriever(store, embedder, cfg.RAG.TopK))
	return store
}
