package kmeans

import "kmviz/pkg/mathutils"

// Point is an immutable 2-D coordinate. Points also serve as centroids, the
// two are only distinguished by role.
type Point struct {
	X float64
	Y float64
}

// Vec gives the point as a vector, which is what pkg/mathutils and
// pkg/searchutils operate on.
func (p Point) Vec() []float64 { return []float64{p.X, p.Y} }

// Finite is false if either coordinate is NaN or +-Inf.
func (p Point) Finite() bool { return mathutils.VecFinite(p.Vec()) }

// PointFromVec is the inverse of Point.Vec. Elements past the second are ignored
// and missing ones are zero.
func PointFromVec(vec []float64) Point {
	var p Point
	if len(vec) > 0 {
		p.X = vec[0]
	}
	if len(vec) > 1 {
		p.Y = vec[1]
	}
	return p
}

// Distance is the euclidean distance between two points.
func Distance(a, b Point) float64 {
	d, _ := mathutils.EuclideanDistance(a.Vec(), b.Vec())
	return d
}

// DataSet is an ordered sequence of points, fixed for the duration of a run.
// Duplicates are allowed and are told apart by index.
type DataSet []Point

// Clone copies the data set so that the copy doesn't alias ds.
func (ds DataSet) Clone() DataSet {
	if ds == nil {
		return nil
	}
	res := make(DataSet, len(ds))
	copy(res, ds)
	return res
}

// vecs converts all points into vectors, in order.
func (ds DataSet) vecs() [][]float64 {
	res := make([][]float64, len(ds))
	for i, p := range ds {
		res[i] = p.Vec()
	}
	return res
}

// validate checks the invariants every run needs from its data.
func (ds DataSet) validate(op string) error {
	if len(ds) == 0 {
		return invalidInput(op, "empty data set")
	}
	for i, p := range ds {
		if !p.Finite() {
			return invalidInputf(op, "point %d is not finite: (%v, %v)", i, p.X, p.Y)
		}
	}
	return nil
}

// clonePoints copies centroids/clusters for snapshots.
func clonePoints(ps []Point) []Point {
	if ps == nil {
		return nil
	}
	res := make([]Point, len(ps))
	copy(res, ps)
	return res
}
