package osmparser

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/osmgraph/pkg"
	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/geo"
	"github.com/lintang-b-s/osmgraph/pkg/geometry"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"go.uber.org/zap"
)

// BuildReport summarizes a graph build. Missing nodes and undecodable coordinates are
// not fatal; they are counted and a few identifiers are kept for the log.
type BuildReport struct {
	Ways         int
	Vertices     int
	Edges        int
	SelfLoops    int
	DroppedEdges int

	MissingNodes   int
	MissingSamples []int64
	DecodeErrors   int
	DecodeSamples  []int64
}

func (r BuildReport) String() string {
	return fmt.Sprintf("ways=%d vertices=%d edges=%d self_loops=%d dropped_edges=%d missing_nodes=%d decode_errors=%d",
		r.Ways, r.Vertices, r.Edges, r.SelfLoops, r.DroppedEdges, r.MissingNodes, r.DecodeErrors)
}

type GraphBuilder struct {
	routableKey string
	logger      *zap.Logger
}

func NewGraphBuilder(routableKey string, logger *zap.Logger) *GraphBuilder {
	if routableKey == "" {
		routableKey = pkg.DEFAULT_ROUTABLE_KEY
	}
	return &GraphBuilder{
		routableKey: routableKey,
		logger:      logger,
	}
}

// acceptOsmWay reports whether the way carries the routable key, whatever its value.
func (b *GraphBuilder) acceptOsmWay(way *osmstore.Way) bool {
	return way.Has(b.routableKey)
}

// Build derives the road graph from the routable ways of store. A vertex exists for every
// node referenced by a routable way and present in the store with a decodable coordinate.
// Each consecutive pair of way nodes that are both vertices becomes an undirected edge
// weighted by its great-circle length in meters.
func (b *GraphBuilder) Build(store *osmstore.Store) (*datastructure.Graph, BuildReport) {
	report := BuildReport{}
	ways := make([]*osmstore.Way, 0)
	store.ForEachWay(func(w *osmstore.Way) {
		if b.acceptOsmWay(w) {
			ways = append(ways, w)
		}
	})
	report.Ways = len(ways)
	b.logger.Sugar().Infof("selected %d routable ways (key %q)", len(ways), b.routableKey)

	builder := datastructure.NewGraphBuilder()
	seen := make(map[int64]struct{})
	for _, w := range ways {
		for _, id := range w.Nodes {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			node, ok := store.Node(id)
			if !ok {
				report.MissingNodes++
				report.MissingSamples = appendSample(report.MissingSamples, id)
				continue
			}
			p, err := geometry.CoordinateOf(node)
			if err != nil {
				if !errors.Is(err, geometry.ErrDecode) {
					b.logger.Warn("unexpected coordinate error", zap.Int64("node", id), zap.Error(err))
				}
				report.DecodeErrors++
				report.DecodeSamples = appendSample(report.DecodeSamples, id)
				continue
			}
			builder.AddVertex(id, p.Lat(), p.Lon())
		}
	}
	b.logger.Sugar().Infof("added %d vertices...", builder.NumberOfVertices())

	for i, w := range ways {
		if (i+1)%50000 == 0 {
			b.logger.Sugar().Infof("building edges of openstreetmap ways: %d...", i+1)
		}
		roadClass := w.Find(b.routableKey)
		for j := 1; j < len(w.Nodes); j++ {
			from, to := w.Nodes[j-1], w.Nodes[j]
			if from == to {
				report.SelfLoops++
				continue
			}
			fromLat, fromLon, okFrom := builder.VertexCoordinates(from)
			toLat, toLon, okTo := builder.VertexCoordinates(to)
			if !okFrom || !okTo {
				report.DroppedEdges++
				continue
			}
			dist := geo.CalculateHaversineDistanceMeters(fromLat, fromLon, toLat, toLon)
			builder.AddEdge(from, to, dist, w.ID, roadClass)
		}
	}

	graph := builder.Build()
	report.Vertices = graph.NumberOfVertices()
	report.Edges = graph.NumberOfEdges()

	if report.MissingNodes > 0 {
		b.logger.Warn("way nodes missing from the store",
			zap.Int("count", report.MissingNodes), zap.Int64s("sample_nodes", report.MissingSamples))
	}
	if report.DecodeErrors > 0 {
		b.logger.Warn("way nodes with undecodable coordinates",
			zap.Int("count", report.DecodeErrors), zap.Int64s("sample_nodes", report.DecodeSamples))
	}
	b.logger.Info("road graph built",
		zap.Int("vertices", report.Vertices),
		zap.Int("edges", report.Edges),
		zap.Int("components", graph.NumberOfComponents()),
		zap.Int("dropped_edges", report.DroppedEdges))
	return graph, report
}

func appendSample(samples []int64, id int64) []int64 {
	return util.AppendSample(samples, id, pkg.MAX_REPORT_SAMPLES)
}
