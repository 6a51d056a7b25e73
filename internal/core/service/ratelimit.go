package service

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterRegistry manages a command rate limiter per client address.
// Connections from the same address share one limiter, which is dropped
// once the last of them releases it.
type RateLimiterRegistry struct {
	mu       sync.Mutex
	limit    int
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter *rate.Limiter
	refs    int
}

// NewRateLimiterRegistry creates a registry whose limiters allow limit
// commands per second with a burst of limit.
func NewRateLimiterRegistry(limit int) *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limit:    limit,
		limiters: make(map[string]*clientLimiter),
	}
}

// Limit returns the configured commands per second.
func (r *RateLimiterRegistry) Limit() int {
	return r.limit
}

// Acquire returns the limiter for client, creating it on first use.
// Every Acquire must be paired with a Release.
func (r *RateLimiterRegistry) Acquire(client string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(r.limit), r.limit)}
		r.limiters[client] = cl
	}
	cl.refs++
	return cl.limiter
}

// Release drops one reference to the limiter for client.
func (r *RateLimiterRegistry) Release(client string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.limiters[client]
	if !ok {
		return
	}
	cl.refs--
	if cl.refs <= 0 {
		delete(r.limiters, client)
	}
}

// Len returns the number of tracked clients.
func (r *RateLimiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
