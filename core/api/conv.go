package api

import (
	"kmviz/pkg/kmeans"
)

// P is a point on the wire, [x, y].
type P [2]float64

func toP(p kmeans.Point) P { return P{p.X, p.Y} }

func (p P) toPoint() kmeans.Point { return kmeans.Point{X: p[0], Y: p[1]} }

// PointsToPs converts points into their wire format.
func PointsToPs(ps []kmeans.Point) []P {
	if ps == nil {
		return nil
	}
	r := make([]P, len(ps))
	for i, p := range ps {
		r[i] = toP(p)
	}
	return r
}

// PsToDataSet converts wire points into a data set.
func PsToDataSet(ps []P) kmeans.DataSet {
	if ps == nil {
		return nil
	}
	r := make(kmeans.DataSet, len(ps))
	for i, p := range ps {
		r[i] = p.toPoint()
	}
	return r
}

// DataResp is the body of the data endpoints.
type DataResp struct {
	Data []P `json:"data" msgpack:"data"`
}

// SnapshotResp is a kmeans.Snapshot with json (and msgpack) tags, plus the
// id of the session it belongs to.
type SnapshotResp struct {
	ID        string `json:"id" msgpack:"id"`
	K         int    `json:"k" msgpack:"k"`
	Strategy  string `json:"strategy" msgpack:"strategy"`
	State     string `json:"state" msgpack:"state"`
	Data      []P    `json:"data" msgpack:"data"`
	Centroids []P    `json:"centroids" msgpack:"centroids"`
	Clusters  [][]P  `json:"clusters" msgpack:"clusters"`
	Labels    []int  `json:"labels" msgpack:"labels"`
	Step      int    `json:"step" msgpack:"step"`
	Converged bool   `json:"converged" msgpack:"converged"`
}

// SnapshotToResp converts s. Nil cluster/label slices (pre first step) come
// out as empty lists, not null.
func SnapshotToResp(id string, s kmeans.Snapshot) SnapshotResp {
	r := SnapshotResp{
		ID:        id,
		K:         s.K,
		Strategy:  string(s.Strategy),
		State:     s.State.String(),
		Data:      PointsToPs(s.DataSet),
		Centroids: PointsToPs(s.Centroids),
		Clusters:  make([][]P, len(s.Clusters)),
		Labels:    s.Labels,
		Step:      s.StepCount,
		Converged: s.Converged,
	}
	for i, c := range s.Clusters {
		r.Clusters[i] = PointsToPs(c)
	}
	if r.Centroids == nil {
		r.Centroids = []P{}
	}
	if r.Labels == nil {
		r.Labels = []int{}
	}
	return r
}

// ErrorResp is the body of every non 2xx response.
type ErrorResp struct {
	Error string `json:"error" msgpack:"error"`
	// Snapshot is set when the error happened mid-run (e.g step limit).
	Snapshot *SnapshotResp `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`
}

// CreateReq is the body for creating a session. Zero values use the server
// defaults, and a missing data set uses the shared one.
type CreateReq struct {
	K        int    `json:"k"`
	Strategy string `json:"strategy"`
	Data     []P    `json:"data"`
}

// ResetReq is the body for resetting a session. Missing fields keep the
// current value.
type ResetReq struct {
	K        *int    `json:"k"`
	Strategy *string `json:"strategy"`
}

// DataReq is the body for replacing the data of a session. Without data, the
// shared data set is regenerated and used.
type DataReq struct {
	Data []P `json:"data"`
}

// CentroidReq is the body for placing a manual centroid.
type CentroidReq struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (r CentroidReq) toPoint() kmeans.Point { return kmeans.Point{X: r.X, Y: r.Y} }

// StreamMsg is sent over the stream websocket, one per step and a final one
// with Done set.
type StreamMsg struct {
	Snapshot *SnapshotResp `json:"snapshot,omitempty"`
	Done     bool          `json:"done"`
	Error    string        `json:"error,omitempty"`
}
