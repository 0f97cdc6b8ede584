package routing

import (
	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
)

// Router finds a shortest path between two vertices of a road graph.
type Router interface {
	ShortestPath(start, goal datastructure.Index) (PathResult, bool)
	BudgetExhausted() bool
	NumSettledNodes() int
}

// LowerBounder gives an admissible estimate of the road distance from u to t in meters.
type LowerBounder interface {
	LowerBound(u, t datastructure.Index) float64
}

var _ Router = (*AStar)(nil)
