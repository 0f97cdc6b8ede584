package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/osmgraph/pkg/http/router/routerhelper"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type geometryAPI struct {
	geometryService GeometryService
	log             *zap.Logger
}

func NewGeometryAPI(geometryService GeometryService, log *zap.Logger) *geometryAPI {
	return &geometryAPI{
		geometryService: geometryService,
		log:             log,
	}
}

func (api *geometryAPI) Routes(group *helper.RouteGroup) {
	group.GET("/relations/:id/geometry", api.relationGeometry)
	group.GET("/ways/:id/geometry", api.wayGeometry)
}

func parseID(p httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil {
		return 0, errors.New("id must be a valid integer")
	}
	return id, nil
}

func (api *geometryAPI) relationGeometry(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id, err := parseID(p)
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	f, err := api.geometryService.RelationGeometry(id)
	api.writeFeature(w, r, f, err)
}

func (api *geometryAPI) wayGeometry(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id, err := parseID(p)
	if err != nil {
		badRequestResponse(api.log, w, r, err)
		return
	}
	f, err := api.geometryService.WayGeometry(id)
	api.writeFeature(w, r, f, err)
}

func (api *geometryAPI) writeFeature(w http.ResponseWriter, r *http.Request, f *geojson.Feature, err error) {
	if err != nil {
		getStatusCode(api.log, w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": f}, nil); err != nil {
		serverErrorResponse(api.log, w, r, err)
	}
}
