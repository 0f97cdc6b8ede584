package datastructure

import (
	"math"

	"github.com/lintang-b-s/osmgraph/pkg/geo"
)

// Index is an opaque handle into the graph's flat vertex/edge storage.
type Index uint32

const (
	INVALID_VERTEX_ID Index = math.MaxUint32
	INVALID_EDGE_ID   Index = math.MaxUint32
)

type Vertex struct {
	osmID    int64
	lat      float64
	lon      float64
	firstOut Index // index of the first out arc of this vertex in graph.outArcs
}

func NewVertex(osmID int64, lat, lon float64) Vertex {
	return Vertex{osmID: osmID, lat: lat, lon: lon}
}

func (v *Vertex) GetOsmID() int64 {
	return v.osmID
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

// Edge is undirected; it is reachable from both endpoints through an OutArc.
type Edge struct {
	from, to  Index
	dist      float64 // meter
	wayID     int64
	roadClass string
}

func NewEdge(from, to Index, dist float64, wayID int64, roadClass string) Edge {
	return Edge{from: from, to: to, dist: dist, wayID: wayID, roadClass: roadClass}
}

func (e *Edge) GetFrom() Index {
	return e.from
}

func (e *Edge) GetTo() Index {
	return e.to
}

// GetOther returns the endpoint of e that is not u.
func (e *Edge) GetOther(u Index) Index {
	if e.from == u {
		return e.to
	}
	return e.from
}

func (e *Edge) GetDistance() float64 {
	return e.dist
}

func (e *Edge) GetWayID() int64 {
	return e.wayID
}

func (e *Edge) GetRoadClass() string {
	return e.roadClass
}

type OutArc struct {
	head   Index
	edgeID Index
}

func (a OutArc) GetHead() Index {
	return a.head
}

func (a OutArc) GetEdgeID() Index {
	return a.edgeID
}

// Graph is the routable road network. static after Build: safe for concurrent readers.
type Graph struct {
	vertices    []Vertex // last element is a sentinel holding len(outArcs)
	edges       []Edge
	outArcs     []OutArc
	osmToVertex map[int64]Index

	components    []Index // vertex -> connected component id
	numComponents int

	boundingBox *BoundingBox
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices) - 1
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *Graph) GetVertex(u Index) *Vertex {
	return &g.vertices[u]
}

func (g *Graph) GetEdge(e Index) *Edge {
	return &g.edges[e]
}

func (g *Graph) GetVertexCoordinates(u Index) (float64, float64) {
	return g.vertices[u].lat, g.vertices[u].lon
}

func (g *Graph) GetOutDegree(u Index) Index {
	return g.vertices[u+1].firstOut - g.vertices[u].firstOut
}

func (g *Graph) VertexByOsmID(osmID int64) (Index, bool) {
	u, ok := g.osmToVertex[osmID]
	return u, ok
}

// ForOutEdgesOf calls handle for every edge incident to u.
func (g *Graph) ForOutEdgesOf(u Index, handle func(arc OutArc, e *Edge)) {
	for i := g.vertices[u].firstOut; i < g.vertices[u+1].firstOut; i++ {
		arc := g.outArcs[i]
		handle(arc, &g.edges[arc.edgeID])
	}
}

func (g *Graph) ForVertices(handle func(u Index, v *Vertex)) {
	for u := 0; u < g.NumberOfVertices(); u++ {
		handle(Index(u), &g.vertices[u])
	}
}

func (g *Graph) BoundingBox() *BoundingBox {
	return g.boundingBox
}

// GetHaversineDistanceFromUtoV returns the great-circle distance between two vertices in meters.
func (g *Graph) GetHaversineDistanceFromUtoV(u, v Index) float64 {
	uLat, uLon := g.GetVertexCoordinates(u)
	vLat, vLon := g.GetVertexCoordinates(v)
	return geo.CalculateHaversineDistanceMeters(uLat, uLon, vLat, vLon)
}

// GraphBuilder accumulates vertices and edges keyed by osm node id and packs them
// into a Graph.
type GraphBuilder struct {
	vertices    []Vertex
	edges       []Edge
	osmToVertex map[int64]Index
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		vertices:    make([]Vertex, 0),
		edges:       make([]Edge, 0),
		osmToVertex: make(map[int64]Index),
	}
}

// AddVertex adds a vertex for osmID unless it already exists and returns its handle.
func (b *GraphBuilder) AddVertex(osmID int64, lat, lon float64) Index {
	if u, ok := b.osmToVertex[osmID]; ok {
		return u
	}
	u := Index(len(b.vertices))
	b.vertices = append(b.vertices, NewVertex(osmID, lat, lon))
	b.osmToVertex[osmID] = u
	return u
}

func (b *GraphBuilder) HasVertex(osmID int64) bool {
	_, ok := b.osmToVertex[osmID]
	return ok
}

func (b *GraphBuilder) VertexCoordinates(osmID int64) (float64, float64, bool) {
	u, ok := b.osmToVertex[osmID]
	if !ok {
		return 0, 0, false
	}
	return b.vertices[u].lat, b.vertices[u].lon, true
}

// AddEdge adds an undirected edge between two existing vertices. It returns false and
// adds nothing when either endpoint is not a vertex.
func (b *GraphBuilder) AddEdge(fromOsmID, toOsmID int64, dist float64, wayID int64, roadClass string) bool {
	from, ok := b.osmToVertex[fromOsmID]
	if !ok {
		return false
	}
	to, ok := b.osmToVertex[toOsmID]
	if !ok {
		return false
	}
	b.edges = append(b.edges, NewEdge(from, to, dist, wayID, roadClass))
	return true
}

func (b *GraphBuilder) NumberOfVertices() int {
	return len(b.vertices)
}

func (b *GraphBuilder) NumberOfEdges() int {
	return len(b.edges)
}

// Build packs the adjacency into compressed sparse row form: the arcs of vertex u are
// outArcs[vertices[u].firstOut : vertices[u+1].firstOut].
func (b *GraphBuilder) Build() *Graph {
	n := len(b.vertices)
	vertices := make([]Vertex, n+1)
	copy(vertices, b.vertices)

	degree := make([]Index, n+1)
	for _, e := range b.edges {
		degree[e.from]++
		if e.to != e.from {
			degree[e.to]++
		}
	}

	offset := Index(0)
	for u := 0; u <= n; u++ {
		vertices[u].firstOut = offset
		offset += degree[u]
	}

	outArcs := make([]OutArc, offset)
	next := make([]Index, n)
	for u := 0; u < n; u++ {
		next[u] = vertices[u].firstOut
	}
	for id, e := range b.edges {
		outArcs[next[e.from]] = OutArc{head: e.to, edgeID: Index(id)}
		next[e.from]++
		if e.to != e.from {
			outArcs[next[e.to]] = OutArc{head: e.from, edgeID: Index(id)}
			next[e.to]++
		}
	}

	edges := make([]Edge, len(b.edges))
	copy(edges, b.edges)
	osmToVertex := make(map[int64]Index, len(b.osmToVertex))
	for k, v := range b.osmToVertex {
		osmToVertex[k] = v
	}

	g := &Graph{
		vertices:    vertices,
		edges:       edges,
		outArcs:     outArcs,
		osmToVertex: osmToVertex,
	}
	g.boundingBox = g.computeBoundingBox()
	g.computeComponents()
	return g
}

func (g *Graph) computeBoundingBox() *BoundingBox {
	if g.NumberOfVertices() == 0 {
		return nil
	}
	bb := NewBoundingBox(math.MaxFloat64, math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64)
	g.ForVertices(func(_ Index, v *Vertex) {
		bb.Extend(v.lat, v.lon)
	})
	return bb
}
