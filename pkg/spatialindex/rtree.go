package spatialindex

import (
	"math"
	"sort"

	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	// degrees added around every search box so points on the boundary are not lost to rounding
	boxPadding = 1e-7

	// half the earth circumference; every vertex is within this distance of any point
	maxSearchRadiusKm = math.Pi * 6371.0
)

// Rtree indexes graph vertices as points keyed by their handle.
type Rtree struct {
	tr            *rtree.RTreeG[datastructure.Index]
	graph         *datastructure.Graph
	initialRadius float64 // km
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr: &tr,
	}
}

// Build. build r-tree over every vertex of graph. initialRadius (in km) is the first
// radius tried by Nearest.
func (rt *Rtree) Build(graph *datastructure.Graph, initialRadius float64, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	rt.graph = graph
	rt.initialRadius = initialRadius
	if rt.initialRadius <= 0 {
		rt.initialRadius = 0.5
	}

	n := graph.NumberOfVertices()
	graph.ForVertices(func(u datastructure.Index, v *datastructure.Vertex) {
		if (int(u)+1)%500000 == 0 {
			log.Sugar().Infof("indexing vertices: %d/%d...", int(u)+1, n)
		}
		p := [2]float64{v.GetLon(), v.GetLat()}
		rt.tr.Insert(p, p, u)
	})

	log.Info("R-tree spatial index built.", zap.Int("vertices", rt.tr.Len()))
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// Nearest returns the vertex closest to (qLat, qLon) by great-circle distance, and that
// distance in meters. The result is identical to NearestExhaustive, ties included: the
// lowest handle among equally distant vertices wins.
func (rt *Rtree) Nearest(qLat, qLon float64) (datastructure.Index, float64, bool) {
	if rt.graph == nil || rt.tr.Len() == 0 {
		return datastructure.INVALID_VERTEX_ID, 0, false
	}

	for radius := rt.initialRadius; radius < 2*maxSearchRadiusKm; radius *= 2 {
		best, bestDist, ok := rt.nearestWithin(qLat, qLon, radius)
		if ok {
			return best, bestDist, true
		}
	}
	return NearestExhaustive(rt.graph, qLat, qLon)
}

// nearestWithin considers only vertices at most radius km away. Any vertex that close lies
// inside the search box, so a hit here is the global nearest.
func (rt *Rtree) nearestWithin(qLat, qLon, radius float64) (datastructure.Index, float64, bool) {
	best := datastructure.INVALID_VERTEX_ID
	bestDist := math.MaxFloat64
	limit := radius * 1000

	rt.search(qLat, qLon, radius, func(u datastructure.Index) {
		dist := rt.distanceTo(u, qLat, qLon)
		if dist > limit {
			return
		}
		if dist < bestDist || (dist == bestDist && u < best) {
			best = u
			bestDist = dist
		}
	})
	if best == datastructure.INVALID_VERTEX_ID {
		return best, 0, false
	}
	return best, bestDist, true
}

// SearchWithinRadius returns all vertices within radius (in km) from the query point
// (qLat, qLon), closest first.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []datastructure.Index {
	type candidate struct {
		u    datastructure.Index
		dist float64
	}
	candidates := make([]candidate, 0, 10)
	limit := radius * 1000
	rt.search(qLat, qLon, radius, func(u datastructure.Index) {
		if dist := rt.distanceTo(u, qLat, qLon); dist <= limit {
			candidates = append(candidates, candidate{u, dist})
		}
	})

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist == candidates[j].dist {
			return candidates[i].u < candidates[j].u
		}
		return candidates[i].dist < candidates[j].dist
	})
	results := make([]datastructure.Index, len(candidates))
	for i, c := range candidates {
		results[i] = c.u
	}
	return results
}

func (rt *Rtree) search(qLat, qLon, radius float64, handle func(u datastructure.Index)) {
	minLat, minLon, maxLat, maxLon := geo.BoundingBoxAround(qLat, qLon, radius)
	rt.tr.Search([2]float64{minLon - boxPadding, minLat - boxPadding},
		[2]float64{maxLon + boxPadding, maxLat + boxPadding},
		func(_, _ [2]float64, data datastructure.Index) bool {
			handle(data)
			return true
		})
}

func (rt *Rtree) distanceTo(u datastructure.Index, qLat, qLon float64) float64 {
	lat, lon := rt.graph.GetVertexCoordinates(u)
	return geo.CalculateHaversineDistanceMeters(qLat, qLon, lat, lon)
}

// NearestExhaustive scans every vertex. The first vertex with the minimum distance wins.
func NearestExhaustive(graph *datastructure.Graph, qLat, qLon float64) (datastructure.Index, float64, bool) {
	best := datastructure.INVALID_VERTEX_ID
	bestDist := math.MaxFloat64
	graph.ForVertices(func(u datastructure.Index, v *datastructure.Vertex) {
		dist := geo.CalculateHaversineDistanceMeters(qLat, qLon, v.GetLat(), v.GetLon())
		if dist < bestDist {
			best = u
			bestDist = dist
		}
	})
	if best == datastructure.INVALID_VERTEX_ID {
		return best, 0, false
	}
	return best, bestDist, true
}
