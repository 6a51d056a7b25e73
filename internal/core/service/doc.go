// Package service executes decoded commands against the key-value store.
//
// KVService is the only component that touches storage on behalf of a
// client. It is safe for concurrent use by every connection handler.
// RateLimiterRegistry hands out per-client token buckets for the
// optional command rate limit.
package service
