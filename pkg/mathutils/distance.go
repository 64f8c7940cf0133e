/*
This file contains the distance functions used across the project. Only the
Euclidean family is supported, everything else was dropped with the cosine
variants (clustering here is strictly Euclidean).

*/

package mathutils

import (
	"errors"
	"math"
)

// ErrLenMismatch is returned when two vectors of different lengths are compared.
var ErrLenMismatch = errors.New("distance measurement attempt failed: vectors are of different lengths")

// SquaredEuclideanDistance finds the squared euclidean distance between two
// vectors. Returns an err if the vectors are of different length.
func SquaredEuclideanDistance(v1, v2 []float64) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrLenMismatch
	}
	var r float64
	for i := 0; i < len(v1); i++ {
		d := v1[i] - v2[i]
		r += d * d
	}
	return r, nil
}

// EuclideanDistance finds the euclidean distance between two vectors.
// Returns an err if the vectors are of different length.
func EuclideanDistance(v1, v2 []float64) (float64, error) {
	r, err := SquaredEuclideanDistance(v1, v2)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(r), nil
}

// MinDistanceToSet gives the smallest distance (using distFunc) between vec and
// any of the vectors in set. The bool is false when set is empty or when every
// comparison failed.
func MinDistanceToSet(
	vec []float64,
	set [][]float64,
	distFunc func(v1, v2 []float64) (float64, error),
) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, other := range set {
		d, err := distFunc(vec, other)
		if err != nil {
			continue
		}
		if !found || d < best {
			best = d
			found = true
		}
	}
	return best, found
}
