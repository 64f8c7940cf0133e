/*
The dataset pkg is the data source for clustering runs. It can generate
uniformly distributed sample data (the default set is seeded, so it's the
same on each start, while regenerated sets are not) and read points from CSV.
*/
package dataset

import (
	"math/rand"
	"sync"
	"time"

	"kmviz/pkg/kmeans"
)

// DataSet alias for readability.
type DataSet = kmeans.DataSet

// Point alias for readability.
type Point = kmeans.Point

// Uniform creates n points with both coordinates uniform in [lo, hi).
func Uniform(n int, lo, hi float64, seed int64) DataSet {
	if n < 0 {
		n = 0
	}
	rng := rand.New(rand.NewSource(seed))
	ds := make(DataSet, n)
	// All x values first, then all y values, so a given seed gives the
	// same set regardless of how points are consumed.
	for i := range ds {
		ds[i].X = lo + rng.Float64()*(hi-lo)
	}
	for i := range ds {
		ds[i].Y = lo + rng.Float64()*(hi-lo)
	}
	return ds
}

// SourceConfig is used as args to NewSource.
type SourceConfig struct {
	// Size is the amount of points per generated set.
	Size int
	// Min and Max bound both coordinates, [Min, Max).
	Min float64
	Max float64
	// Seed is used for the initial set. Later sets from Regenerate use
	// SeedFunc.
	Seed int64
	// SeedFunc gives seeds for Regenerate. Defaults to the current unix nano.
	SeedFunc func() int64
}

// Source keeps a current data set which can be regenerated on demand. Safe
// for concurrent use.
type Source struct {
	cfg     SourceConfig
	current DataSet
	sync.Mutex
}

// NewSource creates a source, the first set is generated lazily by Current.
func NewSource(cfg SourceConfig) *Source {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.Max <= cfg.Min {
		cfg.Max = cfg.Min + 1
	}
	if cfg.SeedFunc == nil {
		cfg.SeedFunc = func() int64 { return time.Now().UnixNano() }
	}
	return &Source{cfg: cfg}
}

// Current gives (a copy of) the current data set.
func (s *Source) Current() DataSet {
	s.Lock()
	defer s.Unlock()

	if s.current == nil {
		s.current = Uniform(s.cfg.Size, s.cfg.Min, s.cfg.Max, s.cfg.Seed)
	}
	return s.current.Clone()
}

// Regenerate replaces the current data set with a freshly seeded one and
// returns (a copy of) it.
func (s *Source) Regenerate() DataSet {
	s.Lock()
	defer s.Unlock()

	s.current = Uniform(s.cfg.Size, s.cfg.Min, s.cfg.Max, s.cfg.SeedFunc())
	return s.current.Clone()
}
