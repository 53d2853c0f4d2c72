package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"urbanisme/internal/domain/assistant"
	"urbanisme/internal/domain/rag"
	applog "urbanisme/internal/platform/log"
)

// AssistantService is what the query endpoints need from the orchestrator.
type AssistantService interface {
	Query(ctx context.Context, req *assistant.QueryRequest) (*assistant.Answer, error)
	Stats(ctx context.Context) *assistant.Stats
	ClearCache(ctx context.Context) (int, error)
}

// DocumentService is what the document endpoints need from the store.
type DocumentService interface {
	Ingest(ctx context.Context, filename string, data []byte, session string) (*rag.IngestResult, error)
	DeleteSession(session string) int
	Count() int
}

// ServerConfig holds the HTTP settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "0.0.0.0",
		Port:         8000,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}

// Server is the HTTP front of the assistant.
type Server struct {
	config        *ServerConfig
	service       AssistantService
	documents     DocumentService // nil when ingestion is not configured
	maxFileMB     int
	cacheEnabled  bool
	llmConfigured bool
	httpSrv       *http.Server
}

func NewServer(config *ServerConfig, service AssistantService) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	return &Server{config: config, service: service}
}

// SetDocuments enables the upload/session endpoints.
func (s *Server) SetDocuments(docs DocumentService, maxFileMB int) {
	if maxFileMB <= 0 {
		maxFileMB = 20
	}
	s.documents = docs
	s.maxFileMB = maxFileMB
}

// SetHealthFlags feeds the /health report.
func (s *Server) SetHealthFlags(cacheEnabled, llmConfigured bool) {
	s.cacheEnabled = cacheEnabled
	s.llmConfigured = llmConfigured
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	applog.Infof("urbanisme API server starting on %s", addr)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// Handler builds the router; exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Assistant Urbanisme API",
			"version": "0.1.0",
		})
	})
	r.Get("/health", s.health)

	queryHandler := NewQueryHandler(s.service)
	r.Route("/api", func(r chi.Router) {
		queryHandler.RegisterRoutes(r)
		if s.documents != nil {
			docHandler := NewDocumentHandler(s.documents, s.maxFileMB)
			docHandler.RegisterRoutes(r)
		}
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	cache := "disabled"
	if s.cacheEnabled {
		cache = "enabled"
	}
	llm := "not configured"
	if s.llmConfigured {
		llm = "configured"
	}
	documents := 0
	if s.documents != nil {
		documents = s.documents.Count()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     cache,
		"llm":       llm,
		"documents": documents,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
