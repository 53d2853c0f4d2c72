package assistant

import "errors"

// Counter names, persisted under the stats: namespace of the cache store.
const (
	CounterTotal     = "total"
	CounterCacheHits = "cache_hits"
	CounterAPICalls  = "api_calls"
)

// Source labels carried in answers.
const (
	SourceLLM    = "LLM"
	SourceLLMRAG = "LLM+RAG"
	SourceMock   = "mock"
)

// ErrEmptyQuestion is a caller error: there is nothing to answer.
var ErrEmptyQuestion = errors.New("question is empty")

// QueryRequest is one urbanisme question.
type QueryRequest struct {
	Question   string
	Commune    string
	Parcelle   string
	UseContext bool
}

// Answer is the response payload; it is also what gets cached (with Cached
// false and no processing time, both set per-request on the way out).
type Answer struct {
	Answer         string  `json:"answer"`
	Source         string  `json:"source"`
	Cached         bool    `json:"cached"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
}

// Stats reports the usage counters.
type Stats struct {
	TotalQueries int64 `json:"total_queries"`
	CacheHits    int64 `json:"cache_hits"`
	APICalls     int64 `json:"api_calls"`
	CacheEnabled bool  `json:"cache_enabled"`
}
