/*
The kmeans pkg contains a step-wise k-means (Lloyd) engine over 2-D points.

An Engine owns exactly one RunState. It is created (or reset) with a data set,
k and a centroid initialization strategy, and then advanced one discrete step
at a time with Step, each step being an assignment of every point to its
nearest centroid followed by moving every centroid to the mean of its cluster.
A run converges once a step leaves all centroids exactly where they were.

Engines are not safe for concurrent use. Independent runs need independent
engines (see core/session for a namespaced table of them).
*/
package kmeans

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"kmviz/pkg/mathutils"
	"kmviz/pkg/searchutils"
)

// State of an engine.
type State int

const (
	// Uninitialized means fewer than k centroids are placed.
	Uninitialized State = iota
	// Ready means the engine can Step.
	Ready
	// Converged is terminal until the next reset.
	Converged
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Config is the externally settable part of a run. Changing any of it
// resets the run.
type Config struct {
	K        int
	Strategy Strategy
}

// Options tune an engine beyond what the config sets.
type Options struct {
	// Tolerance is the largest centroid movement (euclidean) that still counts
	// as 'unchanged' in the convergence check. 0 (default) requires exact
	// coordinate equality.
	Tolerance float64
	// MaxSteps bounds RunToConvergence. 0 means unbounded, in which case the
	// caller is responsible for cancelling through the context.
	MaxSteps int
	// Rand is used for all random initialization. Seeded from time if nil.
	Rand *rand.Rand
}

// Option modifies Options.
type Option func(*Options)

// WithTolerance sets Options.Tolerance.
func WithTolerance(eps float64) Option { return func(o *Options) { o.Tolerance = eps } }

// WithMaxSteps sets Options.MaxSteps.
func WithMaxSteps(n int) Option { return func(o *Options) { o.MaxSteps = n } }

// WithRand sets Options.Rand.
func WithRand(rng *rand.Rand) Option { return func(o *Options) { o.Rand = rng } }

// WithSeed sets Options.Rand to a generator with a fixed seed.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Rand = rand.New(rand.NewSource(seed)) }
}

func newRand() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) }

// RunState is the complete state of one clustering run.
type RunState struct {
	DataSet   DataSet
	K         int
	Strategy  Strategy
	Centroids []Point
	Clusters  [][]Point
	Labels    []int
	StepCount int
	Converged bool
}

// Engine drives a single k-means run.
type Engine struct {
	opts Options
	rs   RunState
}

// NewEngine validates the input and initializes centroids according to
// cfg.Strategy. With the Manual strategy the engine starts Uninitialized.
func NewEngine(ds DataSet, cfg Config, opts ...Option) (*Engine, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Tolerance < 0 {
		return nil, invalidInputf("new engine", "negative tolerance %v", o.Tolerance)
	}
	if o.MaxSteps < 0 {
		return nil, invalidInputf("new engine", "negative max steps %d", o.MaxSteps)
	}
	if o.Rand == nil {
		o.Rand = newRand()
	}

	e := &Engine{opts: o}
	rs, err := e.newRunState(ds.Clone(), cfg)
	if err != nil {
		return nil, err
	}
	e.rs = rs
	return e, nil
}

// newRunState builds a fresh RunState. The engine is left untouched, so a
// failed reset keeps the previous run intact.
func (e *Engine) newRunState(ds DataSet, cfg Config) (RunState, error) {
	if !cfg.Strategy.Valid() {
		return RunState{}, invalidInputf("reset", "unknown strategy %q", cfg.Strategy)
	}
	centroids, err := InitCentroids(ds, cfg.K, cfg.Strategy, e.opts.Rand)
	if err != nil {
		return RunState{}, err
	}
	return RunState{
		DataSet:   ds,
		K:         cfg.K,
		Strategy:  cfg.Strategy,
		Centroids: centroids,
	}, nil
}

// Reset discards the run and starts a new one on the current data set.
func (e *Engine) Reset(cfg Config) error {
	rs, err := e.newRunState(e.rs.DataSet, cfg)
	if err != nil {
		return err
	}
	e.rs = rs
	return nil
}

// SetData replaces the data set and resets with the current config.
func (e *Engine) SetData(ds DataSet) error {
	rs, err := e.newRunState(ds.Clone(), e.Config())
	if err != nil {
		return err
	}
	e.rs = rs
	return nil
}

// SetK resets with a new k.
func (e *Engine) SetK(k int) error {
	cfg := e.Config()
	cfg.K = k
	return e.Reset(cfg)
}

// SetStrategy resets with a new strategy.
func (e *Engine) SetStrategy(s Strategy) error {
	cfg := e.Config()
	cfg.Strategy = s
	return e.Reset(cfg)
}

// Config gives the config of the current run.
func (e *Engine) Config() Config { return Config{K: e.rs.K, Strategy: e.rs.Strategy} }

// State derives the state from the run.
func (e *Engine) State() State {
	switch {
	case e.rs.Converged:
		return Converged
	case len(e.rs.Centroids) < e.rs.K:
		return Uninitialized
	}
	return Ready
}

// AddManualCentroid places one centroid, only valid for the Manual strategy
// and only until k centroids are placed. The point doesn't have to be part of
// the data set.
func (e *Engine) AddManualCentroid(p Point) error {
	const op = "add manual centroid"
	if e.rs.Strategy != Manual {
		return &PreconditionError{Op: op, State: e.State(),
			Reason: fmt.Sprintf("strategy is %q, not %q", e.rs.Strategy, Manual)}
	}
	if len(e.rs.Centroids) >= e.rs.K {
		return &PreconditionError{Op: op, State: e.State(),
			Reason: fmt.Sprintf("all %d centroids are already placed", e.rs.K)}
	}
	if !p.Finite() {
		return invalidInputf(op, "point is not finite: (%v, %v)", p.X, p.Y)
	}
	e.rs.Centroids = append(e.rs.Centroids, p)
	return nil
}

// Step does one assignment + update iteration and gives the resulting
// snapshot. Stepping is only valid in the Ready state.
func (e *Engine) Step() (Snapshot, error) {
	const op = "step"
	switch e.State() {
	case Uninitialized:
		return Snapshot{}, &PreconditionError{Op: op, State: Uninitialized,
			Reason: "select/initialize centroids first"}
	case Converged:
		return Snapshot{}, &PreconditionError{Op: op, State: Converged,
			Reason: "already converged"}
	}

	labels, clusters := assign(e.rs.DataSet, e.rs.Centroids)
	newCentroids := update(e.rs.Centroids, clusters)
	converged := centroidsEqual(e.rs.Centroids, newCentroids, e.opts.Tolerance)

	e.rs.Labels = labels
	e.rs.Clusters = clusters
	e.rs.Centroids = newCentroids
	e.rs.Converged = converged
	if !converged {
		e.rs.StepCount++
	}
	return e.Snapshot(), nil
}

// RunToConvergence steps until the run converges. Between steps it checks ctx
// (returning ctx.Err()) and the MaxSteps option (returning ErrStepLimit).
// A non-nil r receives every snapshot, and a render error aborts the run.
// The last snapshot is always returned.
func (e *Engine) RunToConvergence(ctx context.Context, r Renderer) (Snapshot, error) {
	if e.State() == Converged {
		return e.Snapshot(), &PreconditionError{Op: "run to convergence",
			State: Converged, Reason: "already converged"}
	}
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return e.Snapshot(), err
		}
		if e.opts.MaxSteps > 0 && n >= e.opts.MaxSteps {
			return e.Snapshot(), fmt.Errorf("%w: %d steps", ErrStepLimit, n)
		}
		snap, err := e.Step()
		if err != nil {
			return e.Snapshot(), err
		}
		if r != nil {
			if err := r.Render(snap); err != nil {
				return snap, err
			}
		}
		if snap.Converged {
			return snap, nil
		}
	}
}

// Snapshot copies the current run for rendering.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		DataSet:   e.rs.DataSet.Clone(),
		K:         e.rs.K,
		Strategy:  e.rs.Strategy,
		State:     e.State(),
		Centroids: clonePoints(e.rs.Centroids),
		StepCount: e.rs.StepCount,
		Converged: e.rs.Converged,
	}
	if e.rs.Clusters != nil {
		s.Clusters = make([][]Point, len(e.rs.Clusters))
		for i, c := range e.rs.Clusters {
			s.Clusters[i] = clonePoints(c)
		}
	}
	if e.rs.Labels != nil {
		s.Labels = make([]int, len(e.rs.Labels))
		copy(s.Labels, e.rs.Labels)
	}
	return s
}

// RunState gives a copy of the run.
func (e *Engine) RunState() RunState {
	s := e.Snapshot()
	return RunState{
		DataSet:   s.DataSet,
		K:         s.K,
		Strategy:  s.Strategy,
		Centroids: s.Centroids,
		Clusters:  s.Clusters,
		Labels:    s.Labels,
		StepCount: s.StepCount,
		Converged: s.Converged,
	}
}

// assign labels every point with the index of its nearest centroid, lowest
// index on ties. Every cluster slice is non-nil, even if empty.
func assign(ds DataSet, centroids []Point) ([]int, [][]Point) {
	cvecs := make([][]float64, len(centroids))
	for i, c := range centroids {
		cvecs[i] = c.Vec()
	}
	labels := make([]int, len(ds))
	clusters := make([][]Point, len(centroids))
	for i := range clusters {
		clusters[i] = []Point{}
	}
	for j, p := range ds {
		label := 0
		nearest := searchutils.KNNEuc(p.Vec(), mathutils.SliceGenerator(cvecs), 1)
		if len(nearest) != 0 {
			label = nearest[0]
		}
		labels[j] = label
		clusters[label] = append(clusters[label], p)
	}
	return labels, clusters
}

// update gives the new centroids: the per-axis mean of each cluster, or the
// previous centroid for empty clusters.
func update(prev []Point, clusters [][]Point) []Point {
	res := make([]Point, len(prev))
	for i, cluster := range clusters {
		mean, ok := mathutils.VecMean(mathutils.SliceGenerator(DataSet(cluster).vecs()))
		if !ok {
			res[i] = prev[i]
			continue
		}
		res[i] = PointFromVec(mean)
	}
	return res
}

// centroidsEqual compares index by index.
func centroidsEqual(a, b []Point, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !mathutils.VecWithin(a[i].Vec(), b[i].Vec(), tol) {
			return false
		}
	}
	return true
}
