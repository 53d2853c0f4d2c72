package assistant

import (
	"context"
	"strings"
	"time"

	applog "urbanisme/internal/platform/log"
	"urbanisme/internal/provider"
)

const (
	llmTemperature = 0.3
	llmMaxTokens   = 1024
)

// Config tunes the orchestrator.
type Config struct {
	Model    string        // LLM model name
	TopK     int           // snippets fetched per question
	CacheTTL time.Duration // answer cache expiry
}

// Service is the query orchestrator: cache first, then retrieval + LLM,
// then the canned fallback. Retriever and LLM are optional; the cache store
// is required but may be a disabled (always-miss) implementation.
type Service struct {
	cache     AnswerCacheStore
	retriever ContextRetriever
	llm       provider.LLMProvider
	model     string
	topK      int
	ttl       time.Duration
}

func NewService(cache AnswerCacheStore, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &Service{
		cache: cache,
		model: cfg.Model,
		topK:  cfg.TopK,
		ttl:   cfg.CacheTTL,
	}
}

// SetRetriever enables context retrieval.
func (s *Service) SetRetriever(r ContextRetriever) {
	s.retriever = r
}

// SetLLM enables real generation; without it every answer is a mock.
func (s *Service) SetLLM(p provider.LLMProvider) {
	s.llm = p
}

// Query runs the answer-or-cache-hit flow. Counters are incremented before
// the operation they describe completes, so a crash mid-request can
// overcount but never undercount attempts.
func (s *Service) Query(ctx context.Context, req *QueryRequest) (*Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	start := time.Now()
	s.cache.Incr(ctx, CounterTotal)

	if ans, ok := s.cache.Get(ctx, req.Question, req.Commune, req.UseContext); ok {
		s.cache.Incr(ctx, CounterCacheHits)
		ans.Cached = true
		ans.ProcessingTime = time.Since(start).Seconds()
		return ans, nil
	}

	s.cache.Incr(ctx, CounterAPICalls)

	var contextBlock string
	if req.UseContext && s.retriever != nil {
		if snippets := s.retriever.Retrieve(ctx, req.Question, s.topK); len(snippets) > 0 {
			contextBlock = strings.Join(snippets, "\n")
		}
	}

	text, source := s.generate(ctx, req, contextBlock)
	ans := &Answer{Answer: text, Source: source, Cached: false}

	s.cache.Put(ctx, req.Question, req.Commune, req.UseContext, ans, s.ttl)

	ans.ProcessingTime = time.Since(start).Seconds()
	return ans, nil
}

// generate calls the LLM and falls back to the canned responder on any
// failure. Availability wins over correctness here: the user always gets an
// answer, never a 502.
func (s *Service) generate(ctx context.Context, req *QueryRequest, contextBlock string) (string, string) {
	if s.llm == nil {
		return MockResponse(req.Question, req.Commune), SourceMock
	}

	resp, err := s.llm.Complete(ctx, &provider.CompletionRequest{
		Model:       s.model,
		System:      systemPrompt,
		Prompt:      buildPrompt(req.Question, contextBlock),
		Temperature: llmTemperature,
		MaxTokens:   llmMaxTokens,
	})
	if err != nil {
		applog.Warn("LLM unavailable, falling back to mock", "error", err)
		return MockResponse(req.Question, req.Commune), SourceMock
	}

	if contextBlock != "" {
		return strings.TrimSpace(resp.Content), SourceLLMRAG
	}
	return strings.TrimSpace(resp.Content), SourceLLM
}

// Stats reads the usage counters; a disabled cache reports zeros.
func (s *Service) Stats(ctx context.Context) *Stats {
	return &Stats{
		TotalQueries: s.cache.Counter(ctx, CounterTotal),
		CacheHits:    s.cache.Counter(ctx, CounterCacheHits),
		APICalls:     s.cache.Counter(ctx, CounterAPICalls),
		CacheEnabled: s.cache.Enabled(),
	}
}

// ClearCache drops every cached answer and reports how many were removed.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	return s.cache.Clear(ctx)
}
