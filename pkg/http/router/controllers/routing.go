package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/osmgraph/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/osmgraph/pkg/http/usecases"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/nearest", api.nearest)
	group.GET("/computeRoutes", api.shortestPath)
	group.POST("/computeRoutes/batch", api.shortestPathBatch)
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0, errors.New(name + " is required and must be a valid float")
	}
	return v, nil
}

func (api *routingAPI) nearest(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nearestRequest
		err     error
	)

	request.Lat, err = parseFloatParam(r, "lat")
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	request.Lon, err = parseFloatParam(r, "lon")
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	if err := validate(request); err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}

	n, err := api.routingService.Nearest(request.Lat, request.Lon)
	if err != nil {
		getStatusCode(api.log, w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewNearestResponse(n)}, nil); err != nil {
		serverErrorResponse(api.log, w, r, err)
	}
}

func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathRequest
		err     error
	)

	request.OriginLat, err = parseFloatParam(r, "origin_lat")
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	request.OriginLon, err = parseFloatParam(r, "origin_lon")
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	request.DestinationLat, err = parseFloatParam(r, "destination_lat")
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	request.DestinationLon, err = parseFloatParam(r, "destination_lon")
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	if err := validate(request); err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}

	route, err := api.routingService.ShortestPath(request.OriginLat, request.OriginLon,
		request.DestinationLat, request.DestinationLon)
	if err != nil {
		getStatusCode(api.log, w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(route)}, nil); err != nil {
		serverErrorResponse(api.log, w, r, err)
	}
}

func (api *routingAPI) shortestPathBatch(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request shortestPathBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		serverErrorResponse(api.log, w, r, err)
		return
	}
	if err := validate(request); err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}

	queries := make([]usecases.RouteQuery, len(request.Routes))
	for i, q := range request.Routes {
		queries[i] = q.toQuery()
	}

	results := api.routingService.ShortestPathBatch(r.Context(), queries)
	items := make([]shortestPathBatchItem, len(results))
	for i, res := range results {
		if res.Err != nil {
			items[i] = shortestPathBatchItem{Error: res.Err.Error()}
			continue
		}
		resp := NewShortestPathResponse(res.Route)
		items[i] = shortestPathBatchItem{Route: &resp}
	}

	if err := writeJSON(w, http.StatusOK, envelope{"data": items}, nil); err != nil {
		serverErrorResponse(api.log, w, r, err)
	}
}
