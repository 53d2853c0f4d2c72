package redisdb

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"urbanisme/internal/domain/assistant"
	applog "urbanisme/internal/platform/log"
)

const (
	answerPrefix  = "urbanisme:"
	counterPrefix = "stats:"
)

// AnswerCache is the Redis-backed answer cache and counter store. It is
// best-effort throughout: every failure is logged and swallowed, reads
// degrade to misses, and a nil client yields a permanently disabled cache
// that satisfies the same contract.
type AnswerCache struct {
	redis *redis.Client // nil = disabled
}

// NewAnswerCache wraps the client; pass nil when Redis was unreachable at
// startup to run in no-cache mode.
func NewAnswerCache(rdb *redis.Client) *AnswerCache {
	return &AnswerCache{redis: rdb}
}

func (c *AnswerCache) Enabled() bool {
	return c.redis != nil
}

// CacheKey derives the deterministic fingerprint for a normalized query.
// Identical inputs always collide; any differing field changes the key.
func CacheKey(question, commune string, useContext bool) string {
	raw := fmt.Sprintf("%s|%s|%t", commune, question, useContext)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", answerPrefix, sum[:16])
}

// Get returns the cached answer, treating unavailability and corrupt
// payloads the same as a miss.
func (c *AnswerCache) Get(ctx context.Context, question, commune string, useContext bool) (*assistant.Answer, bool) {
	if c.redis == nil {
		return nil, false
	}

	key := CacheKey(question, commune, useContext)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var ans assistant.Answer
	if err := json.Unmarshal(data, &ans); err != nil {
		applog.Warn("cached answer corrupt, treating as miss", "key", key, "error", err)
		return nil, false
	}

	applog.Debug("answer cache hit", "key", key)
	return &ans, true
}

// Put stores the answer with the given TTL; expiry is the store's job, not
// a sweeper's. Write failures are logged and swallowed so the answer still
// reaches the caller.
func (c *AnswerCache) Put(ctx context.Context, question, commune string, useContext bool, ans *assistant.Answer, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	payload := assistant.Answer{Answer: ans.Answer, Source: ans.Source}
	data, err := json.Marshal(&payload)
	if err != nil {
		return
	}

	key := CacheKey(question, commune, useContext)
	if err := c.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		applog.Warn("answer cache write failed", "key", key, "error", err)
	}
}

// Incr bumps a usage counter, fire-and-forget. Counters use the store's
// atomic increment so concurrent requests never lose updates.
func (c *AnswerCache) Incr(ctx context.Context, counter string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Incr(ctx, counterPrefix+counter).Err(); err != nil {
		applog.Warn("counter increment failed", "counter", counter, "error", err)
	}
}

// Counter reads a usage counter, 0 on any trouble.
func (c *AnswerCache) Counter(ctx context.Context, counter string) int64 {
	if c.redis == nil {
		return 0
	}
	n, err := c.redis.Get(ctx, counterPrefix+counter).Int64()
	if err != nil {
		return 0
	}
	return n
}

// Clear removes every cached answer (counters stay) and reports the count.
func (c *AnswerCache) Clear(ctx context.Context) (int, error) {
	if c.redis == nil {
		return 0, nil
	}

	var keys []string
	iter := c.redis.Scan(ctx, 0, answerPrefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("delete cache keys: %w", err)
	}
	applog.Info("answer cache cleared", "keys_deleted", len(keys))
	return len(keys), nil
}
