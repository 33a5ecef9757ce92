package identity

import (
	"regexp"
	"sync"
	"testing"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{8}$`)

func TestHasher_ColdUsesDigest(t *testing.T) {
	h := NewHasher(DefaultSeed)
	if h.Warmed() {
		t.Fatal("expected new hasher to be cold")
	}

	got := h.Hash("osm_test_key")
	if !hexHash.MatchString(got) {
		t.Fatalf("expected 8 hex chars, got %q", got)
	}
	if got != fallbackHash("osm_test_key") {
		t.Errorf("expected digest fallback, got %q", got)
	}
}

func TestHasher_WarmUsesFastPath(t *testing.T) {
	h := NewHasher(DefaultSeed)
	h.Warm()
	if !h.Warmed() {
		t.Fatal("expected hasher to be warm")
	}

	first := h.Hash("osm_test_key")
	second := h.Hash("osm_test_key")
	if first != second {
		t.Errorf("expected stable hash, got %q and %q", first, second)
	}
	if !hexHash.MatchString(first) {
		t.Errorf("expected 8 hex chars, got %q", first)
	}
	if first == h.Hash("osm_other_key") {
		t.Error("expected different keys to hash differently")
	}
}

func TestHasher_DoesNotLeakKey(t *testing.T) {
	key := "abcd1234"
	for _, h := range []*Hasher{NewHasher(DefaultSeed), Default()} {
		if h.Hash(key) == key {
			t.Errorf("hash must not equal the key itself")
		}
	}
}

func TestHasher_SeedChangesHash(t *testing.T) {
	a := NewHasher(1)
	b := NewHasher(2)
	a.Warm()
	b.Warm()
	if a.Hash("key") == b.Hash("key") {
		t.Error("expected different seeds to produce different hashes")
	}
}

func TestHasher_ConcurrentWarm(t *testing.T) {
	h := NewHasher(DefaultSeed)
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Warm()
			results[i] = h.Hash("shared")
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		if r != results[0] {
			t.Fatalf("expected identical hashes after warm, got %q and %q", results[0], r)
		}
	}
}

func TestOwnerHash(t *testing.T) {
	if OwnerHash("k") != Default().Hash("k") {
		t.Error("expected OwnerHash to use the default hasher")
	}
}
