package controllers

import (
	"context"

	"github.com/lintang-b-s/osmgraph/pkg/http/usecases"
	"github.com/paulmach/orb/geojson"
)

type RoutingService interface {
	Nearest(lat, lon float64) (usecases.NearestVertex, error)
	ShortestPath(origLat, origLon, dstLat, dstLon float64) (usecases.RouteSummary, error)
	ShortestPathBatch(ctx context.Context, reqs []usecases.RouteQuery) []usecases.RouteBatchItem
}

type GeometryService interface {
	RelationGeometry(id int64) (*geojson.Feature, error)
	WayGeometry(id int64) (*geojson.Feature, error)
}
