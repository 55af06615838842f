package registry_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dyntext/pkg/dyntext"
	"github.com/randalmurphal/dyntext/pkg/dyntext/registry"
)

func autoRequest(text string) dyntext.Request {
	req := dyntext.NewRequest(text)
	req.Shuffle = true
	req.Autoincrement = true
	return req
}

func TestInstances_GetOrCreate(t *testing.T) {
	r := registry.New(nil)

	_, ok := r.Get("a")
	assert.False(t, ok)

	e1 := r.GetOrCreate("a")
	require.NotNil(t, e1)
	e2 := r.GetOrCreate("a")
	assert.Same(t, e1, e2)

	got, ok := r.Get("a")
	assert.True(t, ok)
	assert.Same(t, e1, got)
	assert.Equal(t, 1, r.Len())
}

func TestInstances_NodesKeepSeparateCounters(t *testing.T) {
	r := registry.New(nil)
	ctx := context.Background()
	req := autoRequest("{a|b|c}")

	r.GetOrCreate("first").Process(ctx, req)
	r.GetOrCreate("first").Process(ctx, req)
	r.GetOrCreate("second").Process(ctx, req)

	assert.Equal(t, map[string]int64{"first": 1, "second": 0}, r.Counters())
}

func TestInstances_RemoveResetsNode(t *testing.T) {
	r := registry.New(nil)
	ctx := context.Background()
	req := autoRequest("{a|b|c}")

	r.GetOrCreate("n").Process(ctx, req)
	r.GetOrCreate("n").Process(ctx, req)
	require.Equal(t, int64(1), r.GetOrCreate("n").Counter())

	assert.True(t, r.Remove("n"))
	assert.False(t, r.Remove("n"))
	assert.Equal(t, 0, r.Len())

	res := r.GetOrCreate("n").Process(ctx, req)
	assert.Equal(t, int64(0), res.Counter, "re-added node starts fresh")
}

func TestInstances_IDsSorted(t *testing.T) {
	r := registry.New(nil)
	for _, id := range []string{"c", "a", "b"} {
		r.GetOrCreate(id)
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.IDs())
}

func TestInstances_FactoryReceivesNodeID(t *testing.T) {
	var seen []string
	r := registry.New(func(nodeID string) *dyntext.Engine {
		seen = append(seen, nodeID)
		return dyntext.NewEngine(dyntext.WithCombinationLimit(2))
	})

	e := r.GetOrCreate("limited")
	res := e.Process(context.Background(), dyntext.NewRequest("{a|b|c}"))
	assert.True(t, res.Fallback())
	assert.Equal(t, []string{"limited"}, seen)
}

func TestInstances_ConcurrentGetOrCreate(t *testing.T) {
	var calls atomic.Int32
	r := registry.New(func(string) *dyntext.Engine {
		calls.Add(1)
		return dyntext.NewEngine()
	})

	const goroutines = 50
	engines := make([]*dyntext.Engine, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engines[i] = r.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
}
