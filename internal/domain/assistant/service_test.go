package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"urbanisme/internal/domain/assistant"
	"urbanisme/internal/provider"
)

// memCache is an in-memory AnswerCacheStore with the same copy semantics as
// the Redis implementation: only the answer text and source survive a
// roundtrip.
type memCache struct {
	entries  map[string]assistant.Answer
	counters map[string]int64
	enabled  bool
}

func newMemCache() *memCache {
	return &memCache{
		entries:  make(map[string]assistant.Answer),
		counters: make(map[string]int64),
		enabled:  true,
	}
}

func cacheKey(question, commune string, useContext bool) string {
	return fmt.Sprintf("%s|%s|%t", commune, question, useContext)
}

func (c *memCache) Get(_ context.Context, question, commune string, useContext bool) (*assistant.Answer, bool) {
	entry, ok := c.entries[cacheKey(question, commune, useContext)]
	if !ok {
		return nil, false
	}
	copied := entry
	return &copied, true
}

func (c *memCache) Put(_ context.Context, question, commune string, useContext bool, ans *assistant.Answer, _ time.Duration) {
	c.entries[cacheKey(question, commune, useContext)] = assistant.Answer{Answer: ans.Answer, Source: ans.Source}
}

func (c *memCache) Incr(_ context.Context, counter string) {
	c.counters[counter]++
}

func (c *memCache) Counter(_ context.Context, counter string) int64 {
	return c.counters[counter]
}

func (c *memCache) Clear(_ context.Context) (int, error) {
	n := len(c.entries)
	c.entries = make(map[string]assistant.Answer)
	return n, nil
}

func (c *memCache) Enabled() bool { return c.enabled }

type stubLLM struct {
	reply string
	err   error
	calls int
	last  *provider.CompletionRequest
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) Complete(_ context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &provider.CompletionResponse{Content: s.reply, Model: req.Model}, nil
}

type stubRetriever struct {
	snippets []string
	calls    int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, _ int) []string {
	s.calls++
	return s.snippets
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	svc := assistant.NewService(newMemCache(), assistant.Config{})
	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := svc.Query(context.Background(), &assistant.QueryRequest{Question: q}); !errors.Is(err, assistant.ErrEmptyQuestion) {
			t.Errorf("Query(%q): expected ErrEmptyQuestion, got %v", q, err)
		}
	}
}

func TestQueryCacheMissThenHit(t *testing.T) {
	cache := newMemCache()
	llm := &stubLLM{reply: "La hauteur maximale est de 12 mètres."}
	svc := assistant.NewService(cache, assistant.Config{Model: "test-model"})
	svc.SetLLM(llm)

	ctx := context.Background()
	req := &assistant.QueryRequest{Question: "Quelle hauteur ?", Commune: "Montpellier"}

	first, err := svc.Query(ctx, req)
	if err != nil {
		t.Fatalf("first Query: %v", err)
	}
	if first.Cached {
		t.Error("first answer must not be marked cached")
	}
	if first.Source != assistant.SourceLLM {
		t.Errorf("expected source %q, got %q", assistant.SourceLLM, first.Source)
	}

	second, err := svc.Query(ctx, req)
	if err != nil {
		t.Fatalf("second Query: %v", err)
	}
	if !second.Cached {
		t.Error("second answer must come from cache")
	}
	if second.Answer != first.Answer {
		t.Errorf("cached answer differs: %q vs %q", second.Answer, first.Answer)
	}
	if llm.calls != 1 {
		t.Errorf("expected exactly 1 LLM call, got %d", llm.calls)
	}

	if hits := cache.Counter(ctx, assistant.CounterCacheHits); hits != 1 {
		t.Errorf("expected 1 cache hit, got %d", hits)
	}
	if total := cache.Counter(ctx, assistant.CounterTotal); total != 2 {
		t.Errorf("expected 2 total queries, got %d", total)
	}
	if api := cache.Counter(ctx, assistant.CounterAPICalls); api != 1 {
		t.Errorf("expected 1 api call, got %d", api)
	}
}

func TestQueryDistinctCommunesCacheSeparately(t *testing.T) {
	cache := newMemCache()
	llm := &stubLLM{reply: "réponse"}
	svc := assistant.NewService(cache, assistant.Config{})
	svc.SetLLM(llm)

	ctx := context.Background()
	if _, err := svc.Query(ctx, &assistant.QueryRequest{Question: "zonage ?", Commune: "Montpellier"}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if _, err := svc.Query(ctx, &assistant.QueryRequest{Question: "zonage ?", Commune: "Lyon"}); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if llm.calls != 2 {
		t.Errorf("different communes must not share cache entries, got %d LLM calls", llm.calls)
	}
}

func TestQueryUsesRetrievedContext(t *testing.T) {
	llm := &stubLLM{reply: "réponse avec contexte"}
	retriever := &stubRetriever{snippets: []string{"article 1", "article 2"}}
	svc := assistant.NewService(newMemCache(), assistant.Config{})
	svc.SetLLM(llm)
	svc.SetRetriever(retriever)

	ans, err := svc.Query(context.Background(), &assistant.QueryRequest{Question: "hauteur ?", UseContext: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if ans.Source != assistant.SourceLLMRAG {
		t.Errorf("expected source %q, got %q", assistant.SourceLLMRAG, ans.Source)
	}
	if retriever.calls != 1 {
		t.Errorf("expected 1 retrieval, got %d", retriever.calls)
	}
	if llm.last == nil || !strings.Contains(llm.last.Prompt, "article 1\narticle 2") {
		t.Errorf("retrieved snippets missing from prompt: %q", llm.last.Prompt)
	}
	if !strings.Contains(llm.last.Prompt, "hauteur ?") {
		t.Errorf("question missing from prompt: %q", llm.last.Prompt)
	}
}

func TestQuerySkipsRetrievalWhenDisabled(t *testing.T) {
	llm := &stubLLM{reply: "réponse"}
	retriever := &stubRetriever{snippets: []string{"article 1"}}
	svc := assistant.NewService(newMemCache(), assistant.Config{})
	svc.SetLLM(llm)
	svc.SetRetriever(retriever)

	ans, err := svc.Query(context.Background(), &assistant.QueryRequest{Question: "hauteur ?", UseContext: false})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if retriever.calls != 0 {
		t.Errorf("retriever must not run with use_context=false, got %d calls", retriever.calls)
	}
	if ans.Source != assistant.SourceLLM {
		t.Errorf("expected source %q, got %q", assistant.SourceLLM, ans.Source)
	}
}

func TestQueryFallsBackToMockOnLLMError(t *testing.T) {
	llm := &stubLLM{err: errors.New("timeout")}
	svc := assistant.NewService(newMemCache(), assistant.Config{})
	svc.SetLLM(llm)

	ans, err := svc.Query(context.Background(), &assistant.QueryRequest{Question: "Quelle est la hauteur maximale ?"})
	if err != nil {
		t.Fatalf("Query must not fail when the LLM does: %v", err)
	}
	if ans.Source != assistant.SourceMock {
		t.Errorf("expected source %q, got %q", assistant.SourceMock, ans.Source)
	}
	if want := assistant.MockResponse("Quelle est la hauteur maximale ?", ""); ans.Answer != want {
		t.Errorf("expected the canned answer, got %q", ans.Answer)
	}
}

func TestQueryWithoutLLMUsesMock(t *testing.T) {
	svc := assistant.NewService(newMemCache(), assistant.Config{})

	ans, err := svc.Query(context.Background(), &assistant.QueryRequest{Question: "bonjour"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if ans.Source != assistant.SourceMock {
		t.Errorf("expected source %q, got %q", assistant.SourceMock, ans.Source)
	}
}

func TestStatsReflectCounters(t *testing.T) {
	cache := newMemCache()
	svc := assistant.NewService(cache, assistant.Config{})

	ctx := context.Background()
	req := &assistant.QueryRequest{Question: "permis de construire ?"}
	for i := 0; i < 3; i++ {
		if _, err := svc.Query(ctx, req); err != nil {
			t.Fatalf("Query %d: %v", i, err)
		}
	}

	stats := svc.Stats(ctx)
	if stats.TotalQueries != 3 {
		t.Errorf("expected 3 total queries, got %d", stats.TotalQueries)
	}
	if stats.CacheHits != 2 {
		t.Errorf("expected 2 cache hits, got %d", stats.CacheHits)
	}
	if stats.APICalls != 1 {
		t.Errorf("expected 1 api call, got %d", stats.APICalls)
	}
	if !stats.CacheEnabled {
		t.Error("expected cache to report enabled")
	}
}

func TestClearCacheForcesRegeneration(t *testing.T) {
	cache := newMemCache()
	llm := &stubLLM{reply: "réponse"}
	svc := assistant.NewService(cache, assistant.Config{})
	svc.SetLLM(llm)

	ctx := context.Background()
	req := &assistant.QueryRequest{Question: "emprise au sol ?"}
	if _, err := svc.Query(ctx, req); err != nil {
		t.Fatalf("Query: %v", err)
	}

	deleted, err := svc.ClearCache(ctx)
	if err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 entry cleared, got %d", deleted)
	}

	ans, err := svc.Query(ctx, req)
	if err != nil {
		t.Fatalf("Query after clear: %v", err)
	}
	if ans.Cached {
		t.Error("answer after clear must not come from cache")
	}
	if llm.calls != 2 {
		t.Errorf("expected a fresh LLM call after clear, got %d total", llm.calls)
	}
}
