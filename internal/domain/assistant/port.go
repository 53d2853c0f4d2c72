package assistant

import (
	"context"
	"time"
)

// AnswerCacheStore is the cache + counters contract the orchestrator needs.
// Every method is best-effort: implementations log and swallow backing-store
// failures, Get treats unavailability as a miss, and a disabled store is a
// valid implementation that always misses. Cache trouble must never turn a
// working answer into an error.
type AnswerCacheStore interface {
	Get(ctx context.Context, question, commune string, useContext bool) (*Answer, bool)
	Put(ctx context.Context, question, commune string, useContext bool, ans *Answer, ttl time.Duration)
	Incr(ctx context.Context, counter string)
	Counter(ctx context.Context, counter string) int64
	Clear(ctx context.Context) (int, error)
	Enabled() bool
}

// ContextRetriever supplies relevant snippets for a question, most relevant
// first. Implementations fail open and return nothing on trouble.
type ContextRetriever interface {
	Retrieve(ctx context.Context, question string, topK int) []string
}
