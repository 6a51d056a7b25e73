// Package memory provides the in-memory key-value storage engine.
package memory

import (
	"context"
	"time"

	"github.com/yndnr/memkv-go/pkg/cmap"
)

// DefaultShards keeps the whole keyspace behind a single lock.
const DefaultShards = 1

// Entry is a stored value with an optional absolute expiry.
// A zero ExpiresAt means the entry never expires.
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// HasExpiry reports whether the entry carries an expiry.
func (e Entry) HasExpiry() bool {
	return !e.ExpiresAt.IsZero()
}

// ExpiredAt reports whether the entry is past its expiry at now.
// An entry is still readable at exactly its expiry instant.
func (e Entry) ExpiredAt(now time.Time) bool {
	return e.HasExpiry() && now.After(e.ExpiresAt)
}

// Store is the shared key-value map.
type Store struct {
	data     *cmap.Map[Entry]
	now      func() time.Time
	onExpire func(key string)
}

// Option configures the Store.
type Option func(*Store)

// WithShards sets the number of lock shards (power of 2).
func WithShards(n int) Option {
	return func(s *Store) {
		s.data = cmap.NewWithShards[Entry](n)
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithExpireHook registers a callback run after Get evicts an expired
// key. It runs outside the storage lock.
func WithExpireHook(fn func(key string)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		data: cmap.NewWithShards[Entry](DefaultShards),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Set stores value under key, replacing any previous entry together with
// its expiry. A positive ttl sets the expiry to now+ttl.
func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) {
	e := Entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = s.now().Add(ttl)
	}
	s.data.Set(key, e)
}

// Get returns the value stored under key. An expired entry is deleted
// and reported as absent.
func (s *Store) Get(_ context.Context, key string) (string, bool) {
	var (
		value   string
		found   bool
		expired bool
	)

	s.data.Compute(key, func(e Entry, ok bool) (Entry, cmap.Action) {
		if !ok {
			return e, cmap.Keep
		}
		if e.ExpiredAt(s.now()) {
			expired = true
			return e, cmap.Remove
		}
		value, found = e.Value, true
		return e, cmap.Keep
	})

	if expired && s.onExpire != nil {
		s.onExpire(key)
	}
	return value, found
}

// Exists reports whether an entry is stored under key, expired or not.
// It never evicts.
func (s *Store) Exists(key string) bool {
	return s.data.Has(key)
}

// Len returns the number of stored entries, including expired entries
// that no reader has observed yet.
func (s *Store) Len() int {
	return s.data.Count()
}

// Shards returns the number of lock shards.
func (s *Store) Shards() int {
	return s.data.ShardCount()
}

// ShardLens returns the entry count of each lock shard, in shard order.
func (s *Store) ShardLens() []int {
	stats := s.data.Stats()
	lens := make([]int, len(stats))
	for _, st := range stats {
		lens[st.Index] = st.Count
	}
	return lens
}
