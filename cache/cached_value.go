package cache

import (
	"context"
	"sync"
	"time"
)

// Supplier computes a fresh value for a CachedValue.
type Supplier[T any] func(ctx context.Context) (T, error)

// Option configures a CachedValue.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// CachedValue holds the last result of a Supplier. The value is recomputed
// once its refresh window has passed; failures are memoized and replayed
// until the retry window has passed.
type CachedValue[T any] struct {
	mu sync.Mutex

	supplier Supplier[T]
	refresh  time.Duration
	retry    time.Duration
	now      func() time.Time

	value       T
	hasValue    bool
	err         error
	nextRefresh time.Time
	nextRetry   time.Time
	lastSuccess time.Time
}

// New creates an empty CachedValue. The first access always calls supplier.
func New[T any](refresh, retry time.Duration, supplier Supplier[T], opts ...Option) *CachedValue[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedValue[T]{
		supplier:    supplier,
		refresh:     refresh,
		retry:       retry,
		now:         o.now,
		lastSuccess: o.now(),
	}
}

// Get returns the cached value, refreshing it when the refresh window has passed.
func (c *CachedValue[T]) Get(ctx context.Context) (T, error) {
	return Compute(ctx, c, func(v T) T { return v }, func(T) bool { return true })
}

// Compute applies projection to the cached value. When predicate rejects the
// projected result and the retry window has passed, the value is refreshed
// early and projected again.
func Compute[T, R any](ctx context.Context, c *CachedValue[T], projection func(T) R, predicate func(R) bool) (R, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero R
	now := c.now()

	if c.err != nil {
		if now.Before(c.nextRetry) {
			return zero, c.err
		}
		v, err := c.refreshLocked(ctx, now)
		if err != nil {
			return zero, err
		}
		return projection(v), nil
	}

	if !c.hasValue || !now.Before(c.nextRefresh) {
		v, err := c.refreshLocked(ctx, now)
		if err != nil {
			return zero, err
		}
		return projection(v), nil
	}

	result := projection(c.value)
	if predicate(result) || now.Before(c.nextRetry) {
		return result, nil
	}
	v, err := c.refreshLocked(ctx, now)
	if err != nil {
		return zero, err
	}
	return projection(v), nil
}

func (c *CachedValue[T]) refreshLocked(ctx context.Context, now time.Time) (T, error) {
	v, err := c.supplier(ctx)
	if err != nil && ctx.Err() != nil {
		// the caller gave up; keep the previous state
		return v, err
	}

	c.nextRefresh = now.Add(c.refresh)
	c.nextRetry = now.Add(c.retry)
	if err != nil {
		var zero T
		c.value = zero
		c.hasValue = false
		c.err = err
		return zero, err
	}
	c.value = v
	c.hasValue = true
	c.err = nil
	c.lastSuccess = now
	return v, nil
}

// IsStale reports whether two refresh windows have passed since the last
// successful refresh, or since creation if there was none.
func (c *CachedValue[T]) IsStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.now().Before(c.lastSuccess.Add(2 * c.refresh))
}
