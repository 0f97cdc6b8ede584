package osmparser

import (
	"math"
	"testing"

	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/geo"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func node(id int64, lat, lon float64) *osmstore.Node {
	return &osmstore.Node{ID: id, Lat: toDecimicro(lat), Lon: toDecimicro(lon)}
}

func way(id int64, tags osmstore.Tags, nodes ...int64) *osmstore.Way {
	return &osmstore.Way{ID: id, Nodes: nodes, Tags: tags}
}

func buildStore(t *testing.T, records ...osmstore.Record) *osmstore.Store {
	t.Helper()
	store, err := osmstore.BuildFromFeed(osmstore.NewSliceFeed(records...), zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestBuildThreeNodeLine(t *testing.T) {
	store := buildStore(t,
		node(1, 0, 0),
		node(2, 0, 1),
		node(3, 0, 2),
		way(1, osmstore.Tags{"highway": "primary"}, 1, 2, 3),
	)

	g, report := NewGraphBuilder("highway", zap.NewNop()).Build(store)

	assert.Equal(t, 3, g.NumberOfVertices())
	assert.Equal(t, 2, g.NumberOfEdges())
	assert.Equal(t, 1, report.Ways)
	assert.Equal(t, 0, report.MissingNodes)
	assert.Equal(t, 0, report.DroppedEdges)

	d1 := geo.CalculateHaversineDistanceMeters(0, 0, 0, 1)
	for e := 0; e < g.NumberOfEdges(); e++ {
		edge := g.GetEdge(datastructure.Index(e))
		assert.InDelta(t, d1, edge.GetDistance(), 1e-6)
		assert.Equal(t, int64(1), edge.GetWayID())
		assert.Equal(t, "primary", edge.GetRoadClass())
	}

	n2, ok := g.VertexByOsmID(2)
	require.True(t, ok)
	assert.Equal(t, datastructure.Index(2), g.GetOutDegree(n2))
	lat, lon := g.GetVertexCoordinates(n2)
	assert.InDelta(t, 0.0, lat, 1e-9)
	assert.InDelta(t, 1.0, lon, 1e-9)
}

func TestBuildSkipsNonRoutableWays(t *testing.T) {
	store := buildStore(t,
		node(1, 0, 0),
		node(2, 0, 0.01),
		node(3, 0.01, 0.01),
		node(4, 0.02, 0.02),
		way(1, osmstore.Tags{"highway": "residential"}, 1, 2),
		way(2, osmstore.Tags{"building": "yes"}, 2, 3, 4, 2),
		way(3, nil, 3, 4),
	)

	g, report := NewGraphBuilder("highway", zap.NewNop()).Build(store)

	assert.Equal(t, 1, report.Ways)
	assert.Equal(t, 2, g.NumberOfVertices())
	assert.Equal(t, 1, g.NumberOfEdges())

	testCases := []struct {
		name    string
		osmID   int64
		inGraph bool
	}{
		{name: "shared with routable way", osmID: 2, inGraph: true},
		{name: "only on a building", osmID: 3, inGraph: false},
		{name: "only on untagged ways", osmID: 4, inGraph: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := g.VertexByOsmID(tc.osmID)
			assert.Equal(t, tc.inGraph, ok)
		})
	}
}

func TestBuildCustomRoutableKey(t *testing.T) {
	store := buildStore(t,
		node(1, 0, 0),
		node(2, 0, 0.01),
		node(3, 0, 0.02),
		way(1, osmstore.Tags{"highway": "residential"}, 1, 2),
		way(2, osmstore.Tags{"railway": "rail"}, 2, 3),
	)

	g, _ := NewGraphBuilder("railway", zap.NewNop()).Build(store)
	assert.Equal(t, 2, g.NumberOfVertices())
	_, ok := g.VertexByOsmID(1)
	assert.False(t, ok)
	assert.Equal(t, "rail", g.GetEdge(0).GetRoadClass())
}

func TestBuildMissingAndUndecodableNodes(t *testing.T) {
	store := buildStore(t,
		node(1, 0, 0),
		node(2, 0, 0.01),
		&osmstore.Node{ID: 3, Lat: 95 * 10_000_000, Lon: 0},
		node(5, 0, 0.03),
		way(1, osmstore.Tags{"highway": "service"}, 1, 2, 3, 4, 5),
	)

	g, report := NewGraphBuilder("highway", zap.NewNop()).Build(store)

	assert.Equal(t, 3, g.NumberOfVertices())
	assert.Equal(t, 1, g.NumberOfEdges())
	assert.Equal(t, 1, report.MissingNodes)
	assert.Equal(t, []int64{4}, report.MissingSamples)
	assert.Equal(t, 1, report.DecodeErrors)
	assert.Equal(t, []int64{3}, report.DecodeSamples)
	assert.Equal(t, 3, report.DroppedEdges)

	// no dangling endpoints
	for e := 0; e < g.NumberOfEdges(); e++ {
		edge := g.GetEdge(datastructure.Index(e))
		assert.Less(t, int(edge.GetFrom()), g.NumberOfVertices())
		assert.Less(t, int(edge.GetTo()), g.NumberOfVertices())
	}
	_, ok := g.VertexByOsmID(5)
	assert.True(t, ok)
	assert.Equal(t, datastructure.Index(0), g.GetOutDegree(mustVertex(t, g, 5)))
}

func TestBuildSkipsRepeatedConsecutiveNodes(t *testing.T) {
	store := buildStore(t,
		node(1, 0, 0),
		node(2, 0, 0.01),
		way(1, osmstore.Tags{"highway": "track"}, 1, 1, 2, 2),
	)

	g, report := NewGraphBuilder("", zap.NewNop()).Build(store)
	assert.Equal(t, 1, g.NumberOfEdges())
	assert.Equal(t, 2, report.SelfLoops)
	assert.False(t, math.IsNaN(g.GetEdge(0).GetDistance()))
}

func mustVertex(t *testing.T, g *datastructure.Graph, osmID int64) datastructure.Index {
	t.Helper()
	u, ok := g.VertexByOsmID(osmID)
	require.True(t, ok)
	return u
}
