package benchmark

import (
	"context"
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/memkv-go/internal/storage/memory"
)

// KeyCounts defines the keyspace sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// ShardCounts defines the storage shard counts for benchmarking.
var ShardCounts = []int{1, 16, 64}

// newKey generates a unique, roughly time-ordered key.
func newKey() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "key:" + strings.ToLower(id.String())
}

// prefillStore fills a store with count keys and returns them.
func prefillStore(ctx context.Context, store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := range keys {
		keys[i] = newKey()
		store.Set(ctx, keys[i], "value", 0)
	}
	return keys
}
