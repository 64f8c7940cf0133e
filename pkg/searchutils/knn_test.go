package searchutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmviz/pkg/mathutils"
)

func TestBubble(t *testing.T) {
	insertee := resultItem{3, 3, true}
	res := []resultItem{
		{2, 2, true},
		{1, 1, true},
		{0, 0, true},
	}
	bubble(&insertee, res, false)
	assert.Equal(t, []int{3, 2, 1}, resItems2Indexes(res), "unordered on bubble up")

	insertee = resultItem{0, 0, true}
	res = []resultItem{
		{1, 1, true},
		{2, 2, true},
		{3, 3, true},
	}
	bubble(&insertee, res, true)
	assert.Equal(t, []int{0, 1, 2}, resItems2Indexes(res), "unordered on bubble down")
}

func TestBubbleTieKeepsFirst(t *testing.T) {
	res := []resultItem{{0, 1, true}}
	insertee := resultItem{1, 1, true}
	bubble(&insertee, res, true)
	assert.Equal(t, 0, res[0].index)
}

func TestKNNEuc(t *testing.T) {
	vecPool := [][]float64{
		// Increasingly close to (5,5).
		{2, 2},
		{3, 3},
		{4, 4},
	}
	res := KNNEuc([]float64{5, 5}, mathutils.SliceGenerator(vecPool), 2)
	assert.Equal(t, []int{2, 1}, res)

	// k larger than the pool only returns what exists.
	res = KNNEuc([]float64{5, 5}, mathutils.SliceGenerator(vecPool), 5)
	assert.Equal(t, []int{2, 1, 0}, res)
}

func TestKNNEucTie(t *testing.T) {
	// (5,0) is equally far from both, lowest index wins.
	vecPool := [][]float64{{0, 0}, {10, 0}}
	res := KNNEuc([]float64{5, 0}, mathutils.SliceGenerator(vecPool), 1)
	require.Len(t, res, 1)
	assert.Equal(t, 0, res[0])
}

func TestKFNSetEuc(t *testing.T) {
	pool := [][]float64{{0, 0}, {1, 0}, {5, 0}, {9, 0}, {10, 0}}

	// Furthest from {0,0} alone is (10,0).
	res := KFNSetEuc([][]float64{{0, 0}}, mathutils.SliceGenerator(pool), 1)
	assert.Equal(t, []int{4}, res)

	// With both ends chosen, (5,0) is the furthest from its nearest end.
	res = KFNSetEuc([][]float64{{0, 0}, {10, 0}}, mathutils.SliceGenerator(pool), 1)
	assert.Equal(t, []int{2}, res)

	// Ties go to the first in pool order: (1,0) and (9,0) both sit 1 away.
	res = KFNSetEuc([][]float64{{0, 0}, {5, 0}, {10, 0}}, mathutils.SliceGenerator(pool), 1)
	assert.Equal(t, []int{1}, res)

	assert.Empty(t, KFNSetEuc(nil, mathutils.SliceGenerator(pool), 1))
}

func TestKNNBruteNonPositiveK(t *testing.T) {
	res := KNNEuc([]float64{0, 0}, mathutils.SliceGenerator([][]float64{{1, 1}}), 0)
	assert.Empty(t, res)
}
