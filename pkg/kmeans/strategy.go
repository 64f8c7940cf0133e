package kmeans

import "strings"

// Strategy selects how initial centroids are chosen.
type Strategy string

const (
	// Manual leaves placement to an external actor, see Engine.AddManualCentroid.
	Manual Strategy = "manual"
	// UniformRandom samples k distinct data set indexes uniformly.
	UniformRandom Strategy = "random"
	// Farthest is the farthest-point heuristic.
	Farthest Strategy = "farthest"
	// KMeansPP is k-means++ seeding.
	KMeansPP Strategy = "kmeans++"
)

// Strategies lists all supported strategies.
var Strategies = []Strategy{Manual, UniformRandom, Farthest, KMeansPP}

// ParseStrategy resolves a strategy name. Matching is case insensitive and
// accepts a few aliases ("uniform-random", "kmeanspp", "kmeans-plus-plus").
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return Manual, nil
	case "random", "uniform-random", "uniform":
		return UniformRandom, nil
	case "farthest", "furthest", "farthest-point":
		return Farthest, nil
	case "kmeans++", "kmeanspp", "kmeans-plus-plus":
		return KMeansPP, nil
	}
	return "", invalidInputf("parse strategy", "unknown strategy %q", s)
}

// Valid is true for the strategies in Strategies.
func (s Strategy) Valid() bool {
	for _, v := range Strategies {
		if s == v {
			return true
		}
	}
	return false
}

func (s Strategy) String() string { return string(s) }
