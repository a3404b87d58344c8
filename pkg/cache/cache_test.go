package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGenerateKeyWithParams(t *testing.T) {
	got := GenerateKeyWithParams("forecast", "acct-1", "2024-01-01", "", "10")
	want := "forecast:acct-1:2024-01-01::10"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestHashKeyIsStableAndBounded(t *testing.T) {
	a := HashKey(`{"sma_window":7}`)
	b := HashKey(`{"sma_window":7}`)
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("hash length = %d, want 32", len(a))
	}
	if a == HashKey(`{"sma_window":8}`) {
		t.Fatal("different params must hash differently")
	}
}

func TestMemoryDeleteByPatternMatchesPrefix(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	keys := []string{
		GenerateKey("forecast", "acct-1") + ":a",
		GenerateKey("forecast", "acct-1") + ":b",
		GenerateKey("forecast", "acct-2") + ":a",
		GenerateKey("job", "j1"),
	}
	for _, k := range keys {
		if err := mc.Set(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	if err := mc.DeleteByPattern(ctx, BuildPattern("forecast:acct-1:")); err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}

	var s string
	for _, k := range keys[:2] {
		if err := mc.Get(ctx, k, &s); !errors.Is(err, ErrCacheMiss) {
			t.Errorf("key %s should be gone, got %v", k, err)
		}
	}
	for _, k := range keys[2:] {
		if err := mc.Get(ctx, k, &s); err != nil {
			t.Errorf("key %s should survive, got %v", k, err)
		}
	}
}
