package usecases

import (
	"context"
	"fmt"

	"github.com/lintang-b-s/osmgraph/pkg/engine"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"go.uber.org/zap"
)

type NearestVertex struct {
	Vertex   uint32
	OsmID    int64
	Lat      float64
	Lon      float64
	Distance float64
}

type RouteSummary struct {
	Distance float64
	Polyline string
	Nodes    []int64 // openstreetmap node ids
	Ways     []int64
}

type RouteQuery struct {
	OriginLat      float64
	OriginLon      float64
	DestinationLat float64
	DestinationLon float64
}

type RouteBatchItem struct {
	Route RouteSummary
	Err   error
}

type RoutingService struct {
	log    *zap.Logger
	engine RoutingEngine
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine) *RoutingService {
	return &RoutingService{
		log:    log,
		engine: engine,
	}
}

func (rs *RoutingService) Nearest(lat, lon float64) (NearestVertex, error) {
	n, ok := rs.engine.Nearest(lat, lon)
	if !ok {
		return NearestVertex{}, util.WrapErrorf(engine.ErrNoVertex, util.ErrNotFound,
			"no vertex near %f,%f", lat, lon)
	}
	return NearestVertex{
		Vertex:   uint32(n.Vertex),
		OsmID:    n.OsmID,
		Lat:      n.Lat,
		Lon:      n.Lon,
		Distance: n.Distance,
	}, nil
}

func (rs *RoutingService) ShortestPath(origLat, origLon, dstLat, dstLon float64) (RouteSummary, error) {
	route, err := rs.engine.Route(origLat, origLon, dstLat, dstLon)
	if err != nil {
		return RouteSummary{}, fmt.Errorf("route from %f,%f to %f,%f: %w", origLat, origLon, dstLat, dstLon, err)
	}
	return rs.summarize(route), nil
}

func (rs *RoutingService) ShortestPathBatch(ctx context.Context, reqs []RouteQuery) []RouteBatchItem {
	engineReqs := make([]engine.RouteRequest, len(reqs))
	for i, q := range reqs {
		engineReqs[i] = engine.RouteRequest{
			OriginLat:      q.OriginLat,
			OriginLon:      q.OriginLon,
			DestinationLat: q.DestinationLat,
			DestinationLon: q.DestinationLon,
		}
	}

	results := rs.engine.RouteBatch(ctx, engineReqs)
	items := make([]RouteBatchItem, len(results))
	for i, res := range results {
		if res.Err != nil {
			items[i] = RouteBatchItem{Err: res.Err}
			continue
		}
		items[i] = RouteBatchItem{Route: rs.summarize(res.Route)}
	}
	return items
}

func (rs *RoutingService) summarize(route engine.Route) RouteSummary {
	graph := rs.engine.GetGraph()
	return RouteSummary{
		Distance: route.Distance,
		Polyline: route.Polyline,
		Nodes:    route.Path.OsmNodeIDs(graph),
		Ways:     route.Path.WayIDs(graph),
	}
}
