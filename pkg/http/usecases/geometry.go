package usecases

import (
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type GeometryService struct {
	log    *zap.Logger
	engine GeometryEngine
}

func NewGeometryService(log *zap.Logger, engine GeometryEngine) *GeometryService {
	return &GeometryService{
		log:    log,
		engine: engine,
	}
}

func (gs *GeometryService) RelationGeometry(id int64) (*geojson.Feature, error) {
	return gs.engine.RelationFeature(id)
}

func (gs *GeometryService) WayGeometry(id int64) (*geojson.Feature, error) {
	return gs.engine.WayFeature(id)
}
