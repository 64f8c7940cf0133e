package kmeans

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newManualEngine creates an engine with the given centroids placed manually.
func newManualEngine(t *testing.T, ds DataSet, centroids []Point, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(ds, Config{K: len(centroids), Strategy: Manual}, opts...)
	require.NoError(t, err)
	require.Equal(t, Uninitialized, e.State())
	for _, c := range centroids {
		require.NoError(t, e.AddManualCentroid(c))
	}
	require.Equal(t, Ready, e.State())
	return e
}

func TestStepEndToEnd(t *testing.T) {
	ds := DataSet{{0, 0}, {0, 1}, {10, 0}, {10, 1}}
	e := newManualEngine(t, ds, []Point{{0, 0}, {10, 0}})

	// Step 1: clusters form, centroids move.
	snap, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, [][]Point{{{0, 0}, {0, 1}}, {{10, 0}, {10, 1}}}, snap.Clusters)
	assert.Equal(t, []int{0, 0, 1, 1}, snap.Labels)
	assert.Equal(t, []Point{{0, 0.5}, {10, 0.5}}, snap.Centroids)
	assert.False(t, snap.Converged)
	assert.Equal(t, 1, snap.StepCount)
	assert.Equal(t, Ready, snap.State)

	// Step 2: fixed point.
	snap, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0.5}, {10, 0.5}}, snap.Centroids)
	assert.True(t, snap.Converged)
	assert.Equal(t, 1, snap.StepCount, "step count stops incrementing on convergence")
	assert.Equal(t, Converged, e.State())

	// Step 3: rejected.
	_, err = e.Step()
	require.ErrorIs(t, err, ErrPrecondition)
	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, Converged, pe.State)
	assert.Contains(t, err.Error(), "already converged")
	assert.Equal(t, 1, e.Snapshot().StepCount)
}

func TestStepUninitialized(t *testing.T) {
	e, err := NewEngine(DataSet{{0, 0}, {1, 1}}, Config{K: 2, Strategy: Manual})
	require.NoError(t, err)

	_, err = e.Step()
	require.ErrorIs(t, err, ErrPrecondition)
	assert.Contains(t, err.Error(), "select/initialize centroids first")

	// Still not enough.
	require.NoError(t, e.AddManualCentroid(Point{0, 0}))
	_, err = e.Step()
	require.ErrorIs(t, err, ErrPrecondition)

	require.NoError(t, e.AddManualCentroid(Point{1, 1}))
	_, err = e.Step()
	require.NoError(t, err)
}

func TestAddManualCentroid(t *testing.T) {
	e := newManualEngine(t, DataSet{{0, 0}}, []Point{{3, 3}})

	// Beyond k.
	err := e.AddManualCentroid(Point{4, 4})
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Len(t, e.Snapshot().Centroids, 1)

	// Not finite.
	e, err = NewEngine(DataSet{{0, 0}}, Config{K: 1, Strategy: Manual})
	require.NoError(t, err)
	assert.ErrorIs(t, e.AddManualCentroid(Point{math.NaN(), 0}), ErrInvalidInput)

	// Wrong strategy.
	e, err = NewEngine(DataSet{{0, 0}}, Config{K: 1, Strategy: UniformRandom})
	require.NoError(t, err)
	assert.ErrorIs(t, e.AddManualCentroid(Point{0, 0}), ErrPrecondition)
}

func TestStepTieBreakAndEmptyCluster(t *testing.T) {
	// (5,0) is equidistant from both centroids and must go to cluster 0,
	// which leaves cluster 1 empty.
	e := newManualEngine(t, DataSet{{5, 0}}, []Point{{0, 0}, {10, 0}})

	snap, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, snap.Labels)
	assert.Equal(t, []int{1, 0}, snap.ClusterSizes())
	assert.NotNil(t, snap.Clusters[1])
	assert.Equal(t, Point{5, 0}, snap.Centroids[0])
	assert.Equal(t, Point{10, 0}, snap.Centroids[1], "empty cluster keeps its centroid")
}

func TestStepFixedPoint(t *testing.T) {
	// Centroids already sit on the means.
	e := newManualEngine(t, DataSet{{0, 0}, {10, 0}}, []Point{{0, 0}, {10, 0}})

	snap, err := e.Step()
	require.NoError(t, err)
	assert.True(t, snap.Converged)
	assert.Equal(t, 0, snap.StepCount)
}

func TestStepClusterSizesSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ds := randomDataSet(rng, 200)

	for _, s := range []Strategy{UniformRandom, Farthest, KMeansPP} {
		for _, k := range []int{1, 3, 8} {
			e, err := NewEngine(ds, Config{K: k, Strategy: s}, WithRand(rng))
			require.NoError(t, err)
			for i := 0; i < 100 && e.State() == Ready; i++ {
				snap, err := e.Step()
				require.NoError(t, err)
				require.Len(t, snap.Clusters, k)
				require.Len(t, snap.Centroids, k)

				total := 0
				for _, size := range snap.ClusterSizes() {
					total += size
				}
				require.Equal(t, len(ds), total)

				for j, label := range snap.Labels {
					require.Contains(t, snap.Clusters[label], ds[j])
				}
			}
		}
	}
}

func TestStepAssignsNearest(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	ds := randomDataSet(rng, 100)
	e, err := NewEngine(ds, Config{K: 4, Strategy: UniformRandom}, WithRand(rng))
	require.NoError(t, err)

	before := e.Snapshot().Centroids
	snap, err := e.Step()
	require.NoError(t, err)
	for j, p := range ds {
		best := Distance(p, before[snap.Labels[j]])
		for _, c := range before {
			assert.LessOrEqual(t, best, Distance(p, c))
		}
	}
}

func TestReset(t *testing.T) {
	ds := DataSet{{0, 0}, {0, 1}, {10, 0}, {10, 1}}
	e := newManualEngine(t, ds, []Point{{0, 0}, {10, 0}})
	_, err := e.Step()
	require.NoError(t, err)

	require.NoError(t, e.Reset(Config{K: 2, Strategy: Farthest}))
	snap := e.Snapshot()
	assert.Equal(t, ds, snap.DataSet, "data is preserved")
	assert.Nil(t, snap.Clusters)
	assert.Nil(t, snap.Labels)
	assert.Equal(t, 0, snap.StepCount)
	assert.False(t, snap.Converged)
	assert.Len(t, snap.Centroids, 2)
	assert.Equal(t, Ready, snap.State)

	// Back to manual clears the centroids entirely.
	require.NoError(t, e.SetStrategy(Manual))
	assert.Empty(t, e.Snapshot().Centroids)
	assert.Equal(t, Uninitialized, e.State())

	// A failed reset leaves the run alone.
	require.NoError(t, e.SetStrategy(UniformRandom))
	before := e.Snapshot()
	assert.ErrorIs(t, e.SetK(0), ErrInvalidInput)
	assert.ErrorIs(t, e.SetK(5), ErrInvalidInput)
	assert.ErrorIs(t, e.SetStrategy("nope"), ErrInvalidInput)
	assert.Equal(t, before, e.Snapshot())

	require.NoError(t, e.SetK(3))
	assert.Equal(t, Config{K: 3, Strategy: UniformRandom}, e.Config())
}

func TestSetData(t *testing.T) {
	e, err := NewEngine(DataSet{{0, 0}, {1, 1}}, Config{K: 1, Strategy: UniformRandom}, WithSeed(1))
	require.NoError(t, err)

	next := DataSet{{5, 5}, {6, 6}, {7, 7}}
	require.NoError(t, e.SetData(next))
	snap := e.Snapshot()
	assert.Equal(t, next, snap.DataSet)
	assert.Contains(t, next, snap.Centroids[0])

	assert.ErrorIs(t, e.SetData(nil), ErrInvalidInput)
	assert.Equal(t, next, e.Snapshot().DataSet)
}

func TestNewEngineInvalidInput(t *testing.T) {
	_, err := NewEngine(nil, Config{K: 1, Strategy: UniformRandom})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewEngine(DataSet{{math.Inf(1), 0}}, Config{K: 1, Strategy: UniformRandom})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewEngine(DataSet{{0, 0}}, Config{K: 1, Strategy: UniformRandom}, WithTolerance(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewEngine(DataSet{{0, 0}}, Config{K: 1})
	assert.ErrorIs(t, err, ErrInvalidInput, "empty strategy")
}

func TestEngineDoesNotAliasInput(t *testing.T) {
	ds := DataSet{{0, 0}, {0, 1}}
	e := newManualEngine(t, ds, []Point{{0, 0}})
	ds[0] = Point{99, 99}
	assert.Equal(t, Point{0, 0}, e.Snapshot().DataSet[0])

	snap, err := e.Step()
	require.NoError(t, err)
	snap.Centroids[0] = Point{-1, -1}
	snap.Clusters[0][0] = Point{-1, -1}
	assert.Equal(t, Point{0, 0.5}, e.Snapshot().Centroids[0])
	assert.Equal(t, Point{0, 0}, e.Snapshot().Clusters[0][0])

	rs := e.RunState()
	rs.Labels[0] = 7
	assert.Equal(t, []int{0, 0}, e.RunState().Labels)
	assert.Equal(t, 1, rs.StepCount)
}

func TestWithTolerance(t *testing.T) {
	// Centroids move 0.5 in the first step, which a tolerance of 1 ignores.
	ds := DataSet{{0, 0}, {0, 1}, {10, 0}, {10, 1}}
	e := newManualEngine(t, ds, []Point{{0, 0}, {10, 0}}, WithTolerance(1))

	snap, err := e.Step()
	require.NoError(t, err)
	assert.True(t, snap.Converged)
	assert.Equal(t, 0, snap.StepCount)
	assert.Equal(t, []Point{{0, 0.5}, {10, 0.5}}, snap.Centroids)
}

func TestRunToConvergence(t *testing.T) {
	ds := DataSet{{0, 0}, {0, 1}, {10, 0}, {10, 1}}
	e := newManualEngine(t, ds, []Point{{0, 0}, {10, 0}})

	var rendered []Snapshot
	snap, err := e.RunToConvergence(context.Background(), RenderFunc(func(s Snapshot) error {
		rendered = append(rendered, s)
		return nil
	}))
	require.NoError(t, err)
	assert.True(t, snap.Converged)
	assert.Equal(t, 1, snap.StepCount)
	require.Len(t, rendered, 2)
	assert.False(t, rendered[0].Converged)
	assert.True(t, rendered[1].Converged)

	// Running again is a precondition failure.
	_, err = e.RunToConvergence(context.Background(), nil)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestRunToConvergenceBounded(t *testing.T) {
	ds := DataSet{{0, 0}, {0, 1}, {10, 0}, {10, 1}}

	// Needs two steps, only one is allowed.
	e := newManualEngine(t, ds, []Point{{0, 0}, {10, 0}}, WithMaxSteps(1))
	snap, err := e.RunToConvergence(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStepLimit)
	assert.False(t, snap.Converged)
	assert.Equal(t, 1, snap.StepCount)

	// Cancelled before the first step.
	e = newManualEngine(t, ds, []Point{{0, 0}, {10, 0}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap, err = e.RunToConvergence(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, snap.StepCount)

	// Render errors abort.
	e = newManualEngine(t, ds, []Point{{0, 0}, {10, 0}})
	boom := assert.AnError
	_, err = e.RunToConvergence(context.Background(), RenderFunc(func(Snapshot) error { return boom }))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Ready, e.State())

	// Uninitialized runs can't be driven.
	e, err = NewEngine(ds, Config{K: 2, Strategy: Manual})
	require.NoError(t, err)
	_, err = e.RunToConvergence(context.Background(), nil)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestRunToConvergenceRandomData(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ds := randomDataSet(rng, 100)
	for _, s := range []Strategy{UniformRandom, Farthest, KMeansPP} {
		e, err := NewEngine(ds, Config{K: 3, Strategy: s}, WithRand(rng), WithMaxSteps(1000))
		require.NoError(t, err)
		snap, err := e.RunToConvergence(context.Background(), nil)
		require.NoError(t, err, "strategy %s", s)
		assert.True(t, snap.Converged)
		assert.Equal(t, Converged, snap.State)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "converged", Converged.String())
	assert.Equal(t, "state(9)", State(9).String())
}
