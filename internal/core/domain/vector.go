package domain

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine of the angle between two vectors,
// accumulated in float64. A zero-magnitude operand yields 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// VectorSum accumulates element-wise sums of float32 vectors in float64.
// The first accumulated vector fixes the dimension count.
type VectorSum struct {
	acc []float64
	n   int
}

// NewVectorSum creates an accumulator of the given dimension count.
// Non-positive dims defer the dimension to the first Add.
func NewVectorSum(dims int) *VectorSum {
	if dims < 0 {
		dims = 0
	}
	return &VectorSum{acc: make([]float64, dims)}
}

// Add accumulates one vector. Vectors whose dimension disagrees with the
// accumulator are rejected with ErrDimensionMismatch.
func (s *VectorSum) Add(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	if len(s.acc) == 0 && s.n == 0 {
		s.acc = make([]float64, len(v))
	}
	if len(v) != len(s.acc) {
		return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(v), len(s.acc))
	}
	for i, x := range v {
		s.acc[i] += float64(x)
	}
	s.n++
	return nil
}

// Count returns how many vectors have been accumulated.
func (s *VectorSum) Count() int {
	return s.n
}

// Dimensions returns the accumulator's dimension count, 0 before the
// first Add when none was given up front.
func (s *VectorSum) Dimensions() int {
	return len(s.acc)
}

// Sum returns the accumulated element-wise sum as float32.
func (s *VectorSum) Sum() []float32 {
	out := make([]float32, len(s.acc))
	for i, x := range s.acc {
		out[i] = float32(x)
	}
	return out
}
