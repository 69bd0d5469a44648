package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexSearchOrdering(t *testing.T) {
	idx, err := NewMemoryIndex(3)
	require.NoError(t, err)

	ctx := context.Background()
	err = idx.Add(ctx, []string{"a", "b", "c"}, [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.6, 0.8, 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Size())

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "c", hits[1].ID)
	assert.InDelta(t, 0.6, hits[1].Score, 1e-6)
}

func TestMemoryIndexScoreClamping(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, []string{"neg", "big"}, [][]float32{
		{-1, 0},
		{2, 0},
	}))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.InDelta(t, 0.0, hits[1].Score, 1e-9)
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx, err := NewMemoryIndex(4)
	require.NoError(t, err)

	ctx := context.Background()
	err = idx.Add(ctx, []string{"x"}, [][]float32{{1, 0}})
	assert.ErrorContains(t, err, "dimension mismatch")

	_, err = idx.Search(ctx, []float32{1, 0}, 3)
	assert.ErrorContains(t, err, "dimension mismatch")

	err = idx.Add(ctx, []string{"x", "y"}, [][]float32{{1, 0, 0, 0}})
	assert.ErrorContains(t, err, "length mismatch")
}

func TestMemoryIndexEmptyAndZeroK(t *testing.T) {
	idx, err := NewMemoryIndex(2)
	require.NoError(t, err)

	ctx := context.Background()
	hits, err := idx.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, idx.Add(ctx, []string{"a"}, [][]float32{{1, 0}}))
	hits, err = idx.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestNewMemoryIndexInvalidDimensions(t *testing.T) {
	_, err := NewMemoryIndex(0)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	Normalize(v)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)
	assert.InDelta(t, 1.0, L2Norm(v), 1e-6)

	zero := []float32{0, 0}
	Normalize(zero)
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestInnerProduct(t *testing.T) {
	assert.InDelta(t, 11.0, InnerProduct([]float32{1, 2}, []float32{3, 4}), 1e-9)
	assert.InDelta(t, 0.0, InnerProduct([]float32{1, 0}, []float32{0, 1}), 1e-9)
}
