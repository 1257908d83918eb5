package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_OneValuePerKey(t *testing.T) {
	clock := newFakeClock()
	m := NewMap[string, string](time.Minute, time.Second, WithClock(clock.Now))

	var calls atomic.Int32
	supplier := func(key string) Supplier[string] {
		return func(context.Context) (string, error) {
			calls.Add(1)
			return "value of " + key, nil
		}
	}

	a, err := m.Get(context.Background(), "a", supplier("a"))
	require.NoError(t, err)
	assert.Equal(t, "value of a", a)

	again, err := m.Get(context.Background(), "a", supplier("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "value of a", again)

	_, err = m.Get(context.Background(), "b", supplier("b"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, m.Len())
	assert.Same(t, m.Value("a", nil), m.Value("a", nil))
}

func TestMap_CleanStale(t *testing.T) {
	clock := newFakeClock()
	m := NewMap[int, string](time.Minute, time.Second, WithClock(clock.Now))
	supplier := func(context.Context) (string, error) { return "x", nil }

	_, err := m.Get(context.Background(), 1, supplier)
	require.NoError(t, err)
	clock.Advance(90 * time.Second)
	_, err = m.Get(context.Background(), 2, supplier)
	require.NoError(t, err)

	assert.Equal(t, 0, m.CleanStale())

	// key 1 was last refreshed 2 minutes ago, key 2 only 30 seconds ago
	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, m.CleanStale())
	assert.Equal(t, 1, m.Len())

	var keys []string
	m.values.Range(func(k, _ interface{}) bool {
		keys = append(keys, fmt.Sprint(k))
		return true
	})
	assert.Equal(t, []string{"2"}, keys)
}
