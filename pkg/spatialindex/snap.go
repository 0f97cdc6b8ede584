package spatialindex

import (
	"math"

	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/geo"
)

type EdgeSnap struct {
	EdgeID     datastructure.Index
	Vertex     datastructure.Index // nearest vertex, one endpoint of EdgeID
	Projection geo.Coordinate
	Distance   float64 // meter, from the query point to Projection
}

// SnapToEdge projects the query point onto the closest edge incident to its nearest vertex.
// ok is false when the graph is empty or the nearest vertex has no edges.
func (rt *Rtree) SnapToEdge(qLat, qLon float64) (EdgeSnap, bool) {
	u, _, ok := rt.Nearest(qLat, qLon)
	if !ok {
		return EdgeSnap{}, false
	}

	query := geo.NewCoordinate(qLat, qLon)
	best := EdgeSnap{EdgeID: datastructure.INVALID_EDGE_ID, Vertex: u, Distance: math.MaxFloat64}
	rt.graph.ForOutEdgesOf(u, func(arc datastructure.OutArc, e *datastructure.Edge) {
		aLat, aLon := rt.graph.GetVertexCoordinates(e.GetFrom())
		bLat, bLon := rt.graph.GetVertexCoordinates(e.GetTo())
		dist, projection := geo.PointLinePerpendicularDistance(geo.NewCoordinate(aLat, aLon),
			geo.NewCoordinate(bLat, bLon), query)
		if dist < best.Distance {
			best.EdgeID = arc.GetEdgeID()
			best.Projection = projection
			best.Distance = dist
		}
	})
	if best.EdgeID == datastructure.INVALID_EDGE_ID {
		return EdgeSnap{}, false
	}
	return best, true
}
