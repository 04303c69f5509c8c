package cache

import (
	"sync"
	"time"

	"github.com/goodtune/chime/internal/clock"
	"github.com/goodtune/chime/internal/metrics"
)

// TTL memoizes the result of an expensive operation for a bounded duration.
// A single slot is kept: Get returns the stored value while it is fresher
// than the ttl, and invokes the wrapped operation synchronously otherwise.
//
// The check-then-recompute section is guarded by a mutex, so concurrent
// callers never run the operation twice for the same expiry.
type TTL[T any] struct {
	mu    sync.Mutex
	fn    func() (T, error)
	ttl   time.Duration
	clock clock.Clock

	value       T
	lastRefresh time.Time
	primed      bool
}

// New wraps fn with a cache holding its result for ttl.
func New[T any](ttl time.Duration, fn func() (T, error)) *TTL[T] {
	return NewWithClock[T](ttl, fn, clock.RealClock{})
}

// NewWithClock is New with an injectable clock for tests.
func NewWithClock[T any](ttl time.Duration, fn func() (T, error), clk clock.Clock) *TTL[T] {
	return &TTL[T]{
		fn:    fn,
		ttl:   ttl,
		clock: clk,
	}
}

// Get returns the cached value, refreshing it first if it has expired.
// A failed refresh propagates the error to this caller only; the previous
// value and its refresh timestamp are left untouched, so the next call
// retries.
func (c *TTL[T]) Get() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if c.primed && now.Sub(c.lastRefresh) <= c.ttl {
		metrics.CacheHits.Inc()
		return c.value, nil
	}

	metrics.CacheMisses.Inc()
	value, err := c.fn()
	if err != nil {
		var zero T
		return zero, err
	}

	c.value = value
	c.lastRefresh = now
	c.primed = true
	return c.value, nil
}

// Invalidate discards the stored value so the next Get refreshes.
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primed = false
}
