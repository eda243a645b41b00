package provider

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leeforge/logprovider/errors"
	"github.com/leeforge/logprovider/logging"
)

type countingHandler struct {
	*logging.MemoryHandler
	closed atomic.Int32
}

func (h *countingHandler) Close() error {
	h.closed.Add(1)
	return nil
}

func newCounting(t *testing.T) *countingHandler {
	t.Helper()
	mem, err := logging.NewMemoryHandler(logging.HandlerOptions{Level: "debug", Bubble: true})
	require.NoError(t, err)
	return &countingHandler{MemoryHandler: mem}
}

func memoryLogger(t *testing.T, name string) logging.Logger {
	t.Helper()
	mem, err := logging.NewMemoryHandler(logging.HandlerOptions{Level: "debug", Bubble: true})
	require.NoError(t, err)
	return logging.New(name, []logging.Handler{mem}, nil)
}

func TestCollectionSetAndGet(t *testing.T) {
	c := NewCollection()
	worker := memoryLogger(t, "worker")

	assert.Nil(t, c.Set("worker", worker))
	assert.True(t, c.Has("worker"))
	assert.Equal(t, 1, c.Count())

	got, err := c.Get("worker")
	require.NoError(t, err)
	assert.Same(t, worker, got)
	assert.Same(t, worker, c.MustGet("worker"))
}

func TestCollectionGetMissing(t *testing.T) {
	c := NewCollection()

	_, err := c.Get("ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, c.Has("ghost"))
	assert.Panics(t, func() { c.MustGet("ghost") })
}

func TestCollectionOverwriteKeepsPosition(t *testing.T) {
	c := NewCollection()
	first := memoryLogger(t, "a")
	c.Set("a", first)
	c.Set("b", memoryLogger(t, "b"))

	second := memoryLogger(t, "a")
	previous := c.Set("a", second)

	assert.Same(t, first, previous)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, []string{"a", "b"}, c.Names())
	assert.Same(t, second, c.MustGet("a"))
}

func TestCollectionAddRejectsDuplicates(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.Add("mail", memoryLogger(t, "mail")))

	err := c.Add("mail", memoryLogger(t, "mail"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, 1, c.Count())
}

func TestCollectionAllIteratesInOrder(t *testing.T) {
	c := NewCollection()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		c.Set(name, memoryLogger(t, name))
	}

	var names []string
	for name, l := range c.All() {
		assert.Equal(t, name, l.Name())
		names = append(names, name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)

	var first []string
	for name := range c.All() {
		first = append(first, name)
		break
	}
	assert.Equal(t, []string{"zeta"}, first)
}

func TestCollectionClose(t *testing.T) {
	c := NewCollection()
	h1, h2 := newCounting(t), newCounting(t)
	c.Set("one", logging.New("one", []logging.Handler{h1}, nil))
	c.Set("two", logging.New("two", []logging.Handler{h2}, nil))

	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), h1.closed.Load())
	assert.Equal(t, int32(1), h2.closed.Load())
	assert.Equal(t, 2, c.Count(), "closed loggers stay registered")
}

func TestCollectionConcurrentAccess(t *testing.T) {
	c := NewCollection()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("logger-%d", i%4)
			c.Set(name, logging.New(name, nil, nil))
			_ = c.Has(name)
			_, _ = c.Get(name)
			for range c.All() {
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Count())
}
