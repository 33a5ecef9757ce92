// Package identity derives owner hashes from cloud API keys.
//
// An owner hash attributes ingested records to a key without sending the key
// itself. Hashes are 8 lowercase hex characters. The fast path uses xxHash32;
// until the hasher has been warmed the SHA-256 digest truncated to 8
// characters is used instead, so callers that need a stable value (the cloud
// sender) warm the hasher once before hashing.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pierrec/xxHash/xxHash32"
)

// DefaultSeed is the xxHash32 seed used by Default.
const DefaultSeed uint32 = 0

// HashLength is the number of characters in an owner hash.
const HashLength = 8

// Hasher computes owner hashes.
type Hasher struct {
	seed uint32
	warm atomic.Bool
	once sync.Once
}

// NewHasher creates a cold Hasher using seed.
func NewHasher(seed uint32) *Hasher {
	return &Hasher{seed: seed}
}

var defaultHasher = NewHasher(DefaultSeed)

// Default returns the process-wide warmed hasher.
func Default() *Hasher {
	defaultHasher.Warm()
	return defaultHasher
}

// Warm prepares the fast hash path. It is safe to call repeatedly.
func (h *Hasher) Warm() {
	h.once.Do(func() {
		// Exercise the digest once so the first real key pays no setup cost.
		_ = xxHash32.Checksum([]byte("osmosis"), h.seed)
		h.warm.Store(true)
	})
}

// Warmed reports whether the fast hash path is active.
func (h *Hasher) Warmed() bool {
	return h.warm.Load()
}

// Hash returns the owner hash for key.
func (h *Hasher) Hash(key string) string {
	if h.warm.Load() {
		return fmt.Sprintf("%08x", xxHash32.Checksum([]byte(key), h.seed))
	}
	return fallbackHash(key)
}

// OwnerHash hashes key with the default hasher.
func OwnerHash(key string) string {
	return Default().Hash(key)
}

func fallbackHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:HashLength]
}
