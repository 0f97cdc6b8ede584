package routing

import (
	da "github.com/lintang-b-s/osmgraph/pkg/datastructure"
)

type AStarOption func(*AStar)

// WithMaxSettled stops the search after n vertices have been settled. n <= 0 means no limit.
func WithMaxSettled(n int) AStarOption {
	return func(as *AStar) {
		as.maxSettled = n
	}
}

// AStar is a single-query A* search over an undirected road graph. g is the accumulated
// edge length in meters and h the great-circle distance to the goal, which never exceeds
// the road distance. All mutable search state lives in the value, so concurrent queries
// use one AStar each.
// WithLowerBound tightens the great-circle heuristic with lb, which must never exceed the
// road distance between two vertices.
func WithLowerBound(lb LowerBounder) AStarOption {
	return func(as *AStar) {
		as.lowerBound = lb
	}
}

type AStar struct {
	graph      *da.Graph
	lowerBound LowerBounder

	forwardInfo map[da.Index]VertexInfo
	pq          *da.MinHeap

	maxSettled      int
	numSettledNodes int
	budgetExhausted bool
}

func NewAStar(graph *da.Graph, opts ...AStarOption) *AStar {
	as := &AStar{
		graph: graph,
	}
	for _, opt := range opts {
		opt(as)
	}
	return as
}

func (as *AStar) reset() {
	as.forwardInfo = make(map[da.Index]VertexInfo)
	as.pq = da.NewFourAryHeap()
	as.numSettledNodes = 0
	as.budgetExhausted = false
}

// ShortestPath returns a minimum-distance path from start to goal. ok is false when the
// vertices are disconnected or the settle budget ran out first; BudgetExhausted tells the
// two apart.
func (as *AStar) ShortestPath(start, goal da.Index) (PathResult, bool) {
	as.reset()
	n := da.Index(as.graph.NumberOfVertices())
	if start >= n || goal >= n {
		return PathResult{}, false
	}
	if start == goal {
		return PathResult{Nodes: []da.Index{start}, Distance: 0}, true
	}
	if !as.graph.SameComponent(start, goal) {
		return PathResult{}, false
	}

	as.forwardInfo[start] = NewVertexInfo(0, newVertexEdgePair(da.INVALID_VERTEX_ID, da.INVALID_EDGE_ID))
	as.pq.Insert(start, as.heuristic(start, goal))

	for !as.pq.IsEmpty() {
		if as.maxSettled > 0 && as.numSettledNodes >= as.maxSettled {
			as.budgetExhausted = true
			return PathResult{}, false
		}

		item, _ := as.pq.ExtractMin()
		u := item.GetItem()
		as.numSettledNodes++

		if u == goal {
			return as.retrievePath(start, goal), true
		}
		as.relaxEdges(u, goal)
	}
	return PathResult{}, false
}

func (as *AStar) relaxEdges(u, goal da.Index) {
	uDist := as.forwardInfo[u].GetDist()

	as.graph.ForOutEdgesOf(u, func(arc da.OutArc, e *da.Edge) {
		v := arc.GetHead()
		if v == u {
			return
		}

		newDist := uDist + e.GetDistance()
		vInfo, visited := as.forwardInfo[v]
		if visited && newDist >= vInfo.GetDist() {
			return
		}
		as.forwardInfo[v] = NewVertexInfo(newDist, newVertexEdgePair(u, arc.GetEdgeID()))

		priority := newDist + as.heuristic(v, goal)
		if as.pq.Contains(v) {
			as.pq.DecreaseKey(v, priority)
		} else {
			// v was never queued, or was settled and is re-opened with a cheaper distance
			as.pq.Insert(v, priority)
		}
	})
}

func (as *AStar) heuristic(u, goal da.Index) float64 {
	h := as.graph.GetHaversineDistanceFromUtoV(u, goal)
	if as.lowerBound != nil {
		h = max(h, as.lowerBound.LowerBound(u, goal))
	}
	return h
}

func (as *AStar) retrievePath(start, goal da.Index) PathResult {
	nodes := make([]da.Index, 0)
	edges := make([]da.Index, 0)
	cur := goal
	for cur != start {
		nodes = append(nodes, cur)
		parent := as.forwardInfo[cur].GetParent()
		edges = append(edges, parent.getEdge())
		cur = parent.getVertex()
	}
	nodes = append(nodes, start)

	return PathResult{
		Nodes:    reverse(nodes),
		Edges:    reverse(edges),
		Distance: as.forwardInfo[goal].GetDist(),
	}
}

func (as *AStar) BudgetExhausted() bool {
	return as.budgetExhausted
}

func (as *AStar) NumSettledNodes() int {
	return as.numSettledNodes
}
