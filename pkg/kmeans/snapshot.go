package kmeans

// Snapshot is what a renderer gets after each reset or step. All slices are
// copies, holding on to a snapshot never exposes engine internals.
type Snapshot struct {
	DataSet   DataSet
	K         int
	Strategy  Strategy
	State     State
	Centroids []Point
	// Clusters[i] holds the points assigned to Centroids[i], in data set
	// order. Nil before the first step.
	Clusters [][]Point
	// Labels[j] is the cluster index of DataSet[j]. Nil before the first step.
	Labels    []int
	StepCount int
	Converged bool
}

// Renderer consumes snapshots, e.g for drawing a scatter plot.
type Renderer interface {
	Render(Snapshot) error
}

// RenderFunc is a func adapter for Renderer.
type RenderFunc func(Snapshot) error

func (f RenderFunc) Render(s Snapshot) error { return f(s) }

// ClusterSizes gives len(Clusters[i]) for each i.
func (s *Snapshot) ClusterSizes() []int {
	res := make([]int, len(s.Clusters))
	for i, c := range s.Clusters {
		res[i] = len(c)
	}
	return res
}
