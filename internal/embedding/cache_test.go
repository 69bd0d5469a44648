package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	cache := NewEmbeddingCache(10)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Set("chiave", []float32{0.1, 0.2})
	got, ok := cache.Get("chiave")
	assert.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2}, got)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheOverwrite(t *testing.T) {
	cache := NewEmbeddingCache(10)
	cache.Set("chiave", []float32{1})
	cache.Set("chiave", []float32{2})

	got, ok := cache.Get("chiave")
	assert.True(t, ok)
	assert.Equal(t, []float32{2}, got)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewEmbeddingCache(2)
	cache.Set("a", []float32{1})
	cache.Set("b", []float32{2})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Set("c", []float32{3})
	assert.Equal(t, 2, cache.Len())

	_, ok = cache.Get("b")
	assert.False(t, ok)
	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}

func TestCacheClampedCapacity(t *testing.T) {
	cache := NewEmbeddingCache(0)
	cache.Set("a", []float32{1})
	cache.Set("b", []float32{2})

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()

	first, err := e.Embed(ctx, "operazioni esenti art. 10")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "operazioni esenti art. 10")
	require.NoError(t, err)
	other, err := e.Embed(ctx, "regime del margine")
	require.NoError(t, err)

	assert.Len(t, first, 16)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestMockEmbedderFixedOverride(t *testing.T) {
	e := NewMockEmbedder(4)
	e.Fixed = map[string][]float32{"pinned": {1, 0, 0, 0}}

	got, err := e.Embed(context.Background(), "pinned")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, got)

	batch, err := e.EmbedBatch(context.Background(), []string{"pinned", "other"})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, batch[0])
	assert.Len(t, batch[1], 4)
}
