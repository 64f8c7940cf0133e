/*
This file contains the centroid initializer. Every automatic strategy selects
k distinct data set indexes and copies the points behind them, so centroids
never alias the data set.

*/

package kmeans

import (
	"math/rand"

	"kmviz/pkg/mathutils"
	"kmviz/pkg/searchutils"
)

// InitCentroids produces the initial centroids for ds under strategy s, using
// rng for every random draw. The Manual strategy yields an empty (non-nil)
// slice since placement is done externally.
func InitCentroids(ds DataSet, k int, s Strategy, rng *rand.Rand) ([]Point, error) {
	const op = "init centroids"
	if err := validateInit(op, ds, k, s != Manual); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = newRand()
	}

	var indexes []int
	switch s {
	case Manual:
		return make([]Point, 0, k), nil
	case UniformRandom:
		indexes = uniformRandomIndexes(len(ds), k, rng)
	case Farthest:
		indexes = farthestIndexes(ds, k, rng.Intn(len(ds)))
	case KMeansPP:
		indexes = kmeansPPIndexes(ds, k, rng.Intn(len(ds)), rng)
	default:
		return nil, invalidInputf(op, "unknown strategy %q", s)
	}
	return pick(ds, indexes), nil
}

// FarthestFrom runs the farthest-point heuristic with a fixed first pick, which
// makes the result fully deterministic.
func FarthestFrom(ds DataSet, k, first int) ([]Point, error) {
	const op = "farthest"
	if err := validateInit(op, ds, k, true); err != nil {
		return nil, err
	}
	if first < 0 || first >= len(ds) {
		return nil, invalidInputf(op, "first index %d out of range [0, %d)", first, len(ds))
	}
	return pick(ds, farthestIndexes(ds, k, first)), nil
}

// KMeansPPFrom runs k-means++ seeding with a fixed first pick.
func KMeansPPFrom(ds DataSet, k, first int, rng *rand.Rand) ([]Point, error) {
	const op = "kmeans++"
	if err := validateInit(op, ds, k, true); err != nil {
		return nil, err
	}
	if first < 0 || first >= len(ds) {
		return nil, invalidInputf(op, "first index %d out of range [0, %d)", first, len(ds))
	}
	if rng == nil {
		rng = newRand()
	}
	return pick(ds, kmeansPPIndexes(ds, k, first, rng)), nil
}

// validateInit checks ds and k. distinct is set for strategies that sample
// data set indexes without replacement.
func validateInit(op string, ds DataSet, k int, distinct bool) error {
	if err := ds.validate(op); err != nil {
		return err
	}
	if k <= 0 {
		return invalidInputf(op, "k must be positive, got %d", k)
	}
	// Distinct-index sampling can't produce more centroids than points.
	if distinct && k > len(ds) {
		return invalidInputf(op, "k (%d) exceeds data set size (%d)", k, len(ds))
	}
	return nil
}

// pick copies the points at indexes.
func pick(ds DataSet, indexes []int) []Point {
	res := make([]Point, len(indexes))
	for i, idx := range indexes {
		res[i] = ds[idx]
	}
	return res
}

// uniformRandomIndexes draws indexes in [0,n) until k distinct ones are
// collected. Caller guarantees k <= n.
func uniformRandomIndexes(n, k int, rng *rand.Rand) []int {
	chosen := make(map[int]struct{}, k)
	res := make([]int, 0, k)
	for len(res) < k {
		idx := rng.Intn(n)
		if _, ok := chosen[idx]; ok {
			continue
		}
		chosen[idx] = struct{}{}
		res = append(res, idx)
	}
	return res
}

// unchosenGenerator iterates over the vectors of ds, but yields nil for any
// index already in chosen. nil vectors can't be compared, so the searchutils
// funcs skip them while still counting their index.
func unchosenGenerator(vecs [][]float64, chosen map[int]struct{}) func() ([]float64, bool) {
	i := 0
	return func() ([]float64, bool) {
		if i >= len(vecs) {
			return nil, false
		}
		i++
		if _, ok := chosen[i-1]; ok {
			return nil, true
		}
		return vecs[i-1], true
	}
}

// farthestIndexes starts at first and then keeps picking the index which
// maximises the distance to its nearest chosen centroid. Ties go to the first
// in data set order, and already chosen indexes are never picked again.
func farthestIndexes(ds DataSet, k, first int) []int {
	vecs := ds.vecs()
	chosen := map[int]struct{}{first: {}}
	set := [][]float64{vecs[first]}
	res := []int{first}

	for len(res) < k {
		found := searchutils.KFNSetEuc(set, unchosenGenerator(vecs, chosen), 1)
		if len(found) == 0 {
			break
		}
		idx := found[0]
		chosen[idx] = struct{}{}
		set = append(set, vecs[idx])
		res = append(res, idx)
	}
	return res
}

// kmeansPPIndexes starts at first, then repeatedly weighs every unchosen point
// by its squared distance to the nearest chosen centroid and samples the next
// index from the cumulative weights: r is uniform in [0, total) and the first
// index whose cumulative weight reaches r is picked. If all remaining weight is
// zero (the rest coincide with chosen centroids) the first unchosen index is
// taken.
func kmeansPPIndexes(ds DataSet, k, first int, rng *rand.Rand) []int {
	vecs := ds.vecs()
	chosen := map[int]struct{}{first: {}}
	set := [][]float64{vecs[first]}
	res := []int{first}

	weights := make([]float64, len(vecs))
	for len(res) < k {
		var total float64
		for i, v := range vecs {
			weights[i] = 0
			if _, ok := chosen[i]; ok {
				continue
			}
			d, _ := mathutils.MinDistanceToSet(v, set, mathutils.SquaredEuclideanDistance)
			weights[i] = d
			total += d
		}

		idx := -1
		if total > 0 {
			r := rng.Float64() * total
			var cumulative float64
			for i, w := range weights {
				if w <= 0 {
					continue
				}
				cumulative += w
				// Last positive weight is a fallback for rounding.
				idx = i
				if cumulative >= r {
					break
				}
			}
		} else {
			for i := range vecs {
				if _, ok := chosen[i]; !ok {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			break
		}
		chosen[idx] = struct{}{}
		set = append(set, vecs[idx])
		res = append(res, idx)
	}
	return res
}
