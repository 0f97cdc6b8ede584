package usecases

import (
	"context"

	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/engine"
	"github.com/paulmach/orb/geojson"
)

type RoutingEngine interface {
	GetGraph() *datastructure.Graph
	Nearest(lat, lon float64) (engine.Nearest, bool)
	Route(origLat, origLon, dstLat, dstLon float64) (engine.Route, error)
	RouteBatch(ctx context.Context, reqs []engine.RouteRequest) []engine.RouteResult
}

type GeometryEngine interface {
	RelationFeature(id int64) (*geojson.Feature, error)
	WayFeature(id int64) (*geojson.Feature, error)
}
