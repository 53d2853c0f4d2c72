package redisdb_test

import (
	"context"
	"strings"
	"testing"
	"time"

	redisdb "urbanisme/internal/db/redis"
	"urbanisme/internal/domain/assistant"
)

func TestCacheKeyDeterministic(t *testing.T) {
	a := redisdb.CacheKey("Quelle hauteur ?", "Montpellier", true)
	b := redisdb.CacheKey("Quelle hauteur ?", "Montpellier", true)
	if a != b {
		t.Errorf("identical inputs produced different keys: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "urbanisme:") {
		t.Errorf("key missing namespace prefix: %q", a)
	}
}

func TestCacheKeyVariesPerField(t *testing.T) {
	base := redisdb.CacheKey("Quelle hauteur ?", "Montpellier", true)
	variants := []string{
		redisdb.CacheKey("Quelle hauteur  ?", "Montpellier", true),
		redisdb.CacheKey("Quelle hauteur ?", "Lyon", true),
		redisdb.CacheKey("Quelle hauteur ?", "Montpellier", false),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with the base key %q", i, base)
		}
	}
}

func TestDisabledCacheContract(t *testing.T) {
	cache := redisdb.NewAnswerCache(nil)
	ctx := context.Background()

	if cache.Enabled() {
		t.Error("nil-client cache must report disabled")
	}

	if _, ok := cache.Get(ctx, "question", "", true); ok {
		t.Error("disabled cache must always miss")
	}

	// writes and counter bumps must be silent no-ops
	cache.Put(ctx, "question", "", true, &assistant.Answer{Answer: "réponse"}, time.Hour)
	cache.Incr(ctx, assistant.CounterTotal)

	if n := cache.Counter(ctx, assistant.CounterTotal); n != 0 {
		t.Errorf("disabled cache counter: expected 0, got %d", n)
	}

	deleted, err := cache.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear on disabled cache: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Clear on disabled cache: expected 0, got %d", deleted)
	}
}
