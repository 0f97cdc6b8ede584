package landmark

import (
	"github.com/lintang-b-s/osmgraph/pkg"
	da "github.com/lintang-b-s/osmgraph/pkg/datastructure"
)

// Dijkstra computes single-source shortest distances to every vertex of the graph.
type Dijkstra struct {
	graph *da.Graph

	dist []float64
	pq   *da.MinHeap

	numSettledNodes int
}

func NewDijkstra(graph *da.Graph) *Dijkstra {
	return &Dijkstra{
		graph: graph,
	}
}

// ShortestPath returns the distance in meters from s to every vertex. Unreachable vertices
// get pkg.INF_WEIGHT.
func (d *Dijkstra) ShortestPath(s da.Index) []float64 {
	n := d.graph.NumberOfVertices()
	d.dist = make([]float64, n)
	for v := 0; v < n; v++ {
		d.dist[v] = pkg.INF_WEIGHT
	}
	d.pq = da.NewFourAryHeap()
	d.numSettledNodes = 0

	d.dist[s] = 0
	d.pq.Insert(s, 0)

	for !d.pq.IsEmpty() {
		item, _ := d.pq.ExtractMin()
		u := item.GetItem()
		d.numSettledNodes++

		uDist := d.dist[u]
		d.graph.ForOutEdgesOf(u, func(arc da.OutArc, e *da.Edge) {
			v := arc.GetHead()
			newDist := uDist + e.GetDistance()
			if newDist >= d.dist[v] {
				return
			}
			d.dist[v] = newDist
			if d.pq.Contains(v) {
				d.pq.DecreaseKey(v, newDist)
			} else {
				d.pq.Insert(v, newDist)
			}
		})
	}

	return d.dist
}

func (d *Dijkstra) NumSettledNodes() int {
	return d.numSettledNodes
}
