package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCosineSimilarity_Identical tests similarity of a vector with itself
func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{1, 2, 3}

	sim, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)
}

// TestCosineSimilarity_Orthogonal tests perpendicular vectors
func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-9)
}

// TestCosineSimilarity_Opposite tests antiparallel vectors
func TestCosineSimilarity_Opposite(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, sim, 1e-9)
}

// TestCosineSimilarity_Ranking tests that a near-parallel vector scores
// between the parallel and orthogonal ones
func TestCosineSimilarity_Ranking(t *testing.T) {
	query := []float32{1, 0}

	a, err := CosineSimilarity(query, []float32{1, 0})
	require.NoError(t, err)
	c, err := CosineSimilarity(query, []float32{0.9, 0.1})
	require.NoError(t, err)
	b, err := CosineSimilarity(query, []float32{0, 1})
	require.NoError(t, err)

	assert.Greater(t, a, c)
	assert.Greater(t, c, b)
}

// TestCosineSimilarity_DimensionMismatch tests length disagreement
func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

// TestCosineSimilarity_ZeroMagnitude tests the zero-vector convention
func TestCosineSimilarity_ZeroMagnitude(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, sim)
}

// TestVectorSum_ElementWise tests the basic aggregation sum
func TestVectorSum_ElementWise(t *testing.T) {
	sum := NewVectorSum(2)
	require.NoError(t, sum.Add([]float32{1, 2}))
	require.NoError(t, sum.Add([]float32{3, 4}))

	assert.Equal(t, []float32{4, 6}, sum.Sum())
	assert.Equal(t, 2, sum.Count())
}

// TestVectorSum_DeferredDimension tests dimension fixing on first Add
func TestVectorSum_DeferredDimension(t *testing.T) {
	sum := NewVectorSum(0)
	assert.Equal(t, 0, sum.Dimensions())

	require.NoError(t, sum.Add([]float32{1, 1, 1}))
	assert.Equal(t, 3, sum.Dimensions())

	err := sum.Add([]float32{1, 1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 1, sum.Count())
}

// TestVectorSum_RejectsEmpty tests that empty vectors never accumulate
func TestVectorSum_RejectsEmpty(t *testing.T) {
	sum := NewVectorSum(0)
	assert.ErrorIs(t, sum.Add(nil), ErrDimensionMismatch)
	assert.Equal(t, 0, sum.Count())
}

// TestVectorSum_Transitive tests that summing leaves directly equals
// summing intermediate sums
func TestVectorSum_Transitive(t *testing.T) {
	leaves := [][]float32{{1, 2}, {3, 4}, {5, 6}}

	// Sum of all leaves at once.
	flat := NewVectorSum(2)
	for _, v := range leaves {
		require.NoError(t, flat.Add(v))
	}

	// Sum of a nested partial sum plus the remaining leaf.
	inner := NewVectorSum(2)
	require.NoError(t, inner.Add(leaves[0]))
	require.NoError(t, inner.Add(leaves[1]))
	outer := NewVectorSum(2)
	require.NoError(t, outer.Add(inner.Sum()))
	require.NoError(t, outer.Add(leaves[2]))

	assert.Equal(t, flat.Sum(), outer.Sum())
}
