package routing

import (
	da "github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/geo"
)

// PathResult is a route through the graph. Edges[i] joins Nodes[i] and Nodes[i+1].
// Distance is in meters.
type PathResult struct {
	Nodes    []da.Index
	Edges    []da.Index
	Distance float64
}

func (p PathResult) Coordinates(graph *da.Graph) []geo.Coordinate {
	coords := make([]geo.Coordinate, len(p.Nodes))
	for i, u := range p.Nodes {
		lat, lon := graph.GetVertexCoordinates(u)
		coords[i] = geo.NewCoordinate(lat, lon)
	}
	return coords
}

// Polyline encodes the path geometry as a google encoded polyline.
func (p PathResult) Polyline(graph *da.Graph) string {
	return geo.PolylineFromCoords(p.Coordinates(graph))
}

// OsmNodeIDs maps the path vertices back to openstreetmap node ids.
func (p PathResult) OsmNodeIDs(graph *da.Graph) []int64 {
	ids := make([]int64, len(p.Nodes))
	for i, u := range p.Nodes {
		ids[i] = graph.GetVertex(u).GetOsmID()
	}
	return ids
}

// WayIDs returns the distinct ways traversed, in order of first use.
func (p PathResult) WayIDs(graph *da.Graph) []int64 {
	ways := make([]int64, len(p.Edges))
	for i, e := range p.Edges {
		ways[i] = graph.GetEdge(e).GetWayID()
	}
	return removeDuplicates(ways)
}
