package controllers

import "github.com/lintang-b-s/osmgraph/pkg/http/usecases"

type nearestRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

type nearestResponse struct {
	Vertex   uint32  `json:"vertex"`
	OsmID    int64   `json:"osm_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance"`
}

func NewNearestResponse(n usecases.NearestVertex) nearestResponse {
	return nearestResponse{
		Vertex:   n.Vertex,
		OsmID:    n.OsmID,
		Lat:      n.Lat,
		Lon:      n.Lon,
		Distance: n.Distance,
	}
}

type shortestPathRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"min=-180,max=180"`
}

func (r shortestPathRequest) toQuery() usecases.RouteQuery {
	return usecases.RouteQuery{
		OriginLat:      r.OriginLat,
		OriginLon:      r.OriginLon,
		DestinationLat: r.DestinationLat,
		DestinationLon: r.DestinationLon,
	}
}

type shortestPathResponse struct {
	Path  string  `json:"path"`
	Dist  float64 `json:"distance"`
	Nodes []int64 `json:"nodes"`
	Ways  []int64 `json:"ways"`
}

func NewShortestPathResponse(route usecases.RouteSummary) shortestPathResponse {
	return shortestPathResponse{
		Path:  route.Polyline,
		Dist:  route.Distance,
		Nodes: route.Nodes,
		Ways:  route.Ways,
	}
}

type shortestPathBatchRequest struct {
	Routes []shortestPathRequest `json:"routes" validate:"required,min=1,max=100,dive"`
}

type shortestPathBatchItem struct {
	Route *shortestPathResponse `json:"route,omitempty"`
	Error string                `json:"error,omitempty"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
