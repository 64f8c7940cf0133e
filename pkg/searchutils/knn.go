/*
This file contains a few funcs which do 'normal' k-nearest (or furthest) neighs
searching using vectors. The main implementation is with KNNBrute(...), while
the other exported funcs (below it) are just convenience funcs/prefabs which
configure KNNBrute.

All searches are stable: of two vectors with the same score, the one that
came first from the generator ranks first. The kmeans pkg depends on this for
its tie-breaking rules (lowest centroid index, first point in data order).

*/

package searchutils

import (
	"math"

	"kmviz/pkg/mathutils"
)

// Internal type for tracking searched elements that are best..
type resultItem struct {
	// Index of the element in the iterable (generator) that was searched.
	index int
	// Used in search funcs to keep track of vector relevance.
	score float64
	// Used a signal for whether or not the instance of resultItem
	// is actually used and not just initialised.
	set bool
}

// bubble inserts the 'insertee' into 'items' in an ordered manner (in place),
// without changing the length of 'items' (i.e a value will be lost). The order
// is specified with the related arg. Note: only works as expected only if the
// 'items' slice is already sorted. Equal scores never displace each other, so
// earlier insertions win ties.
//
//	Example(0, [1,2,3], true) -> [0,1,2]
//	Example(3, [2,1,0], false) -> [3,2,1]
func bubble(insertee *resultItem, items []resultItem, ascending bool) {
	for i := 0; i < len(items); i++ {
		better := insertee.score > items[i].score
		if ascending {
			better = insertee.score < items[i].score
		}
		if better || !items[i].set {
			*insertee, items[i] = items[i], *insertee
		}
	}
}

// resItems2Indexes simply converts a slice of resultItems to a slice of contained index values.
func resItems2Indexes(items []resultItem) []int {
	res := make([]int, 0, len(items))
	for i := 0; i < len(items); i++ {
		if items[i].set {
			res = append(res, items[i].index)
		}
	}
	return res
}

// KNNBruteArgs contain arguments for KNNBrute. All args must be specified.
type KNNBruteArgs struct {
	// Intended to be a generator which returns all candidate vectors,
	// bool=false signals end of iterable.
	VecPoolGenerator func() ([]float64, bool)
	// In a KNN scenario, this specifies the K.
	K int
	// Specifies how scores are ranked. With a distance as ScoreFunc, a
	// smaller number is nearer and Ascending should be true for a nearest
	// neighbour search and false for a furthest neighbour search.
	Ascending bool
	// ScoreFunc scores a single candidate vector. Candidates that give an
	// error are skipped (but still counted for the returned indexes).
	ScoreFunc func(v []float64) (float64, error)
}

// KNNBrute is a general-purpose linear search for finding k best scoring
// vectors of a pool, and then returning their index (best first).
// See KNNBruteArgs (accepted argument) for more info.
func KNNBrute(args KNNBruteArgs) []int {
	if args.K <= 0 {
		return []int{}
	}
	res := make([]resultItem, args.K)
	// Worst possible score, anything scoring beyond it is never included.
	worst := math.MaxFloat64
	if !args.Ascending {
		worst *= -1
	}
	for i := 0; i < args.K; i++ {
		res[i].score = worst
	}
	i := 0
	for {
		v, cont := args.VecPoolGenerator()
		if !cont {
			break
		}
		score, err := args.ScoreFunc(v)
		if err != nil || math.IsNaN(score) {
			i++
			continue
		}
		newSlot := &resultItem{i, score, true}
		if args.Ascending && score < worst {
			bubble(newSlot, res, true)
		}
		if !args.Ascending && score > worst {
			bubble(newSlot, res, false)
		}
		i++
	}
	return resItems2Indexes(res)
}

// distanceTo creates a KNNBruteArgs.ScoreFunc which uses the euclidean
// distance to targetVec.
func distanceTo(targetVec []float64) func([]float64) (float64, error) {
	return func(v []float64) (float64, error) {
		return mathutils.EuclideanDistance(targetVec, v)
	}
}

// distanceToSet creates a KNNBruteArgs.ScoreFunc which uses the euclidean
// distance from a vector to the nearest vector in set.
func distanceToSet(set [][]float64) func([]float64) (float64, error) {
	return func(v []float64) (float64, error) {
		d, ok := mathutils.MinDistanceToSet(v, set, mathutils.EuclideanDistance)
		if !ok {
			return 0, mathutils.ErrLenMismatch
		}
		return d, nil
	}
}

// KNNEuc finds 'k' nearest neighs using Euclidean distance. It accepts 'targetVec' which
// is compared to all vectors given by 'vecPoolGenerator' (bool=false signals stop).
// The return is a slice of indexes referencing the nearest neighs.
func KNNEuc(targetVec []float64, vecPoolGenerator func() ([]float64, bool), k int) []int {
	return KNNBrute(KNNBruteArgs{
		VecPoolGenerator: vecPoolGenerator,
		K:                k,
		Ascending:        true,
		ScoreFunc:        distanceTo(targetVec),
	})
}

// KFNSetEuc finds the 'k' vectors of 'vecPoolGenerator' that are furthest away
// from a set of vectors, where the distance between a vector and the set is
// the Euclidean distance to its nearest member. An empty set yields no result.
func KFNSetEuc(set [][]float64, vecPoolGenerator func() ([]float64, bool), k int) []int {
	if len(set) == 0 {
		return []int{}
	}
	return KNNBrute(KNNBruteArgs{
		VecPoolGenerator: vecPoolGenerator,
		K:                k,
		Ascending:        false,
		ScoreFunc:        distanceToSet(set),
	})
}
