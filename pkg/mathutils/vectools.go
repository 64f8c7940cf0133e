package mathutils

import "math"

// VecMean computes the element-wise mean of all vectors given by generator
// (bool=false signals end). False is returned if the generator is empty or
// if the vectors are not of equal length.
func VecMean(generator func() ([]float64, bool)) ([]float64, bool) {
	vec, cont := generator()
	if !cont {
		return vec, false
	}

	res := make([]float64, len(vec))
	copy(res, vec)

	n := 1.
	for {
		vec, cont := generator()
		if !cont {
			break
		}
		if len(vec) != len(res) {
			return res, false
		}
		for i := 0; i < len(res); i++ {
			res[i] += vec[i]
		}
		n += 1
	}

	for i := 0; i < len(res); i++ {
		res[i] /= n
	}

	return res, true
}

// VecEq checks exact (bitwise for non-NaN floats) equality of two vectors.
func VecEq(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// VecWithin reports whether the euclidean distance between a and b is at
// most tol. A tol of 0 is the same as VecEq.
func VecWithin(a, b []float64, tol float64) bool {
	if tol <= 0 {
		return VecEq(a, b)
	}
	d, err := EuclideanDistance(a, b)
	if err != nil {
		return false
	}
	return d <= tol
}

// VecFinite is true if no element of vec is NaN or +-Inf.
func VecFinite(vec []float64) bool {
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SliceGenerator gives a generator over vecs, which is the iterable type
// accepted by VecMean and the search funcs in pkg/searchutils.
func SliceGenerator(vecs [][]float64) func() ([]float64, bool) {
	i := 0
	return func() ([]float64, bool) {
		if i >= len(vecs) {
			return nil, false
		}
		i++
		return vecs[i-1], true
	}
}
