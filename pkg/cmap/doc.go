// Package cmap provides a concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards by murmur3 hash.
// Every operation takes its shard's mutex exclusively, so operations on
// the same key are linearized. With a single shard the whole map sits
// behind one lock.
//
// Usage:
//
//	m := cmap.NewWithShards[Entry](1)
//	m.Set("key", e)
//	m.Compute("key", func(cur Entry, ok bool) (Entry, cmap.Action) {
//		if ok && cur.Expired() {
//			return cur, cmap.Remove
//		}
//		return cur, cmap.Keep
//	})
package cmap
