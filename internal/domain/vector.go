package domain

import "math"

// Term is one non-zero coordinate of a SparseVector.
type Term struct {
	ID     int     `json:"id"`
	Weight float64 `json:"weight"`
}

// SparseVector is a term-weighted vector sorted by ascending term ID.
// A nil SparseVector is the null vector of a context with no usable tokens.
type SparseVector []Term

// IsNull reports whether v carries no terms.
func (v SparseVector) IsNull() bool { return len(v) == 0 }

// Norm returns the Euclidean norm of v.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return math.Sqrt(sum)
}

// Dot returns the dot product of two ID-sorted vectors.
func (v SparseVector) Dot(other SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v) && j < len(other) {
		switch {
		case v[i].ID == other[j].ID:
			sum += v[i].Weight * other[j].Weight
			i++
			j++
		case v[i].ID < other[j].ID:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of v and other, 0 when either is null.
func (v SparseVector) Cosine(other SparseVector) float64 {
	if v.IsNull() || other.IsNull() {
		return 0
	}
	n := v.Norm() * other.Norm()
	if n == 0 {
		return 0
	}
	return v.Dot(other) / n
}

// Equal reports element-wise equality.
func (v SparseVector) Equal(other SparseVector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}
