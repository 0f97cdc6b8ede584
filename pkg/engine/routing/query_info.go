package routing

import (
	da "github.com/lintang-b-s/osmgraph/pkg/datastructure"
)

type vertexEdgePair struct {
	vertex da.Index
	edge   da.Index
}

func newVertexEdgePair(vertex, edge da.Index) vertexEdgePair {
	return vertexEdgePair{
		vertex: vertex,
		edge:   edge,
	}
}

func (ve vertexEdgePair) getVertex() da.Index {
	return ve.vertex
}

func (ve vertexEdgePair) getEdge() da.Index {
	return ve.edge
}

// VertexInfo is the search label of a vertex: best known distance from the source and the
// (vertex, edge) it was reached through.
type VertexInfo struct {
	dist   float64
	parent vertexEdgePair
}

func NewVertexInfo(dist float64, parent vertexEdgePair) VertexInfo {
	return VertexInfo{
		dist:   dist,
		parent: parent,
	}
}

func (vi VertexInfo) GetDist() float64 {
	return vi.dist
}

func (vi VertexInfo) GetParent() vertexEdgePair {
	return vi.parent
}
