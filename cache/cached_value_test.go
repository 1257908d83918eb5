package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingSupplier struct {
	calls  atomic.Int32
	values [][]string
	errs   []error
}

func (s *countingSupplier) supply(context.Context) (*[]string, error) {
	i := int(s.calls.Add(1)) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	v := append([]string(nil), s.values[min(i, len(s.values)-1)]...)
	return &v, nil
}

func TestCachedValue_FirstAccessRefreshes(t *testing.T) {
	clock := newFakeClock()
	s := &countingSupplier{values: [][]string{{"a"}}}
	c := New(10*time.Second, 2*time.Second, s.supply, WithClock(clock.Now))

	v, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, *v)
	assert.Equal(t, int32(1), s.calls.Load())
}

func TestCachedValue_SameInstanceWithinRefreshWindow(t *testing.T) {
	clock := newFakeClock()
	s := &countingSupplier{values: [][]string{{"a"}, {"b"}}}
	c := New(10*time.Second, 2*time.Second, s.supply, WithClock(clock.Now))

	first, err := c.Get(context.Background())
	require.NoError(t, err)
	clock.Advance(9 * time.Second)
	second, err := c.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), s.calls.Load())

	clock.Advance(time.Second)
	third, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, *third)
	assert.Equal(t, int32(2), s.calls.Load())
}

func TestCachedValue_ErrorIsMemoizedUntilRetry(t *testing.T) {
	clock := newFakeClock()
	boom := errors.New("broker unavailable")
	s := &countingSupplier{values: [][]string{{"a"}}, errs: []error{boom}}
	c := New(10*time.Second, 2*time.Second, s.supply, WithClock(clock.Now))

	_, err := c.Get(context.Background())
	assert.ErrorIs(t, err, boom)

	clock.Advance(time.Second)
	_, err = c.Get(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), s.calls.Load())

	clock.Advance(time.Second)
	v, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, *v)
	assert.Equal(t, int32(2), s.calls.Load())
}

func TestCompute_RejectedPredicateRetriesEarly(t *testing.T) {
	clock := newFakeClock()
	s := &countingSupplier{values: [][]string{{"a"}, {"a", "b"}}}
	c := New(10*time.Second, 2*time.Second, s.supply, WithClock(clock.Now))

	contains := func(name string) (bool, error) {
		return Compute(context.Background(), c,
			func(v *[]string) bool {
				for _, n := range *v {
					if n == name {
						return true
					}
				}
				return false
			},
			func(found bool) bool { return found })
	}

	found, err := contains("b")
	require.NoError(t, err)
	assert.False(t, found)

	// within the retry window the miss is served from cache
	clock.Advance(time.Second)
	found, err = contains("b")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int32(1), s.calls.Load())

	clock.Advance(time.Second)
	found, err = contains("b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int32(2), s.calls.Load())

	// accepted results do not refresh before the refresh window
	clock.Advance(3 * time.Second)
	found, err = contains("a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int32(2), s.calls.Load())
}

func TestCachedValue_CanceledRefreshIsNotMemoized(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	c := New(10*time.Second, 2*time.Second, func(ctx context.Context) (string, error) {
		calls++
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "ok", nil
	}, WithClock(clock.Now))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	v, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCachedValue_IsStale(t *testing.T) {
	clock := newFakeClock()
	fail := false
	c := New(time.Hour, 2*time.Minute, func(context.Context) (int, error) {
		if fail {
			return 0, errors.New("registry down")
		}
		return 1, nil
	}, WithClock(clock.Now))

	assert.False(t, c.IsStale())
	_, err := c.Get(context.Background())
	require.NoError(t, err)

	fail = true
	clock.Advance(90 * time.Minute)
	_, err = c.Get(context.Background())
	require.Error(t, err)
	assert.False(t, c.IsStale())

	clock.Advance(30 * time.Minute)
	assert.True(t, c.IsStale())
}

func TestCachedValue_ConcurrentAccessRefreshesOnce(t *testing.T) {
	clock := newFakeClock()
	s := &countingSupplier{values: [][]string{{"a"}}}
	c := New(10*time.Second, 2*time.Second, s.supply, WithClock(clock.Now))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), s.calls.Load())
}
