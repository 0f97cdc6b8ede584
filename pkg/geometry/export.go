package geometry

import (
	"errors"
	"io"

	"github.com/lintang-b-s/osmgraph/pkg"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

func newFeature(geom orb.Geometry, id int64, osmType string, tags osmstore.Tags) *geojson.Feature {
	f := geojson.NewFeature(geom)
	f.Properties["@osm_id"] = id
	f.Properties["@osm_type"] = osmType
	for k, v := range tags {
		f.Properties[k] = v
	}
	return f
}

// RelationFeature returns the GeoJSON feature of rel. Multipolygon and boundary relations
// whose rings close become (multi)polygons; otherwise the outer coordinates, or all member
// coordinates, form a line string. Non-outer members are listed under "members".
func (r *Resolver) RelationFeature(rel *osmstore.Relation) (*geojson.Feature, bool, error) {
	var geom orb.Geometry

	if _, ok := pkg.GeometryRelationTypes[rel.Find("type")]; ok {
		mp, ok, err := r.MultiPolygon(rel)
		if err != nil {
			return nil, false, err
		}
		if ok {
			if len(mp) == 1 {
				geom = mp[0]
			} else {
				geom = mp
			}
		}
	}

	if geom == nil {
		coords, ok, err := r.OuterRingCoordinates(rel)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			coords, ok, err = r.AllMemberCoordinates(rel)
			if err != nil {
				return nil, false, err
			}
		}
		if !ok {
			return nil, false, nil
		}
		geom = coords
	}

	details, err := r.NonOuterMemberDetail(rel)
	if err != nil {
		return nil, false, err
	}
	members := make([]map[string]interface{}, len(details))
	for i, d := range details {
		members[i] = d.Properties()
	}

	f := newFeature(geom, rel.ID, "relation", rel.Tags)
	f.Properties["members"] = members
	return f, true, nil
}

// WayFeature returns a line string, or a polygon for closed area-like ways.
func (r *Resolver) WayFeature(w *osmstore.Way) (*geojson.Feature, bool, error) {
	coords, err := r.CoordinatesOfWay(w)
	if err != nil {
		return nil, false, err
	}
	if len(coords) == 0 {
		return nil, false, nil
	}

	var geom orb.Geometry = coords
	if closed(coords) && len(coords) >= 4 && (w.Has("building") || w.Find("area") == "yes") {
		geom = orb.Polygon{orb.Ring(coords)}
	}
	return newFeature(geom, w.ID, "way", w.Tags), true, nil
}

// ExportReport counts what ExportGeometries skipped.
type ExportReport struct {
	Exported      int
	Empty         int
	DecodeErrors  int
	DecodeSamples []int64
}

// ExportGeometries writes every multipolygon and boundary relation of store as a GeoJSON
// FeatureCollection. Relations with undecodable coordinates are logged and skipped.
func ExportGeometries(store *osmstore.Store, w io.Writer, log *zap.Logger) (ExportReport, error) {
	resolver := NewResolver(store)
	fc := geojson.NewFeatureCollection()
	report := ExportReport{}

	store.ForEachRelation(func(rel *osmstore.Relation) {
		if _, ok := pkg.GeometryRelationTypes[rel.Find("type")]; !ok {
			return
		}
		f, ok, err := resolver.RelationFeature(rel)
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				report.DecodeErrors++
				report.DecodeSamples = util.AppendSample(report.DecodeSamples, rel.ID, pkg.MAX_REPORT_SAMPLES)
				return
			}
			log.Warn("skipping relation", zap.Int64("relation", rel.ID), zap.Error(err))
			return
		}
		if !ok {
			report.Empty++
			return
		}
		fc.Append(f)
		report.Exported++
	})

	if report.DecodeErrors > 0 {
		log.Warn("relations skipped because of undecodable coordinates",
			zap.Int("count", report.DecodeErrors), zap.Int64s("sample_relations", report.DecodeSamples))
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return report, err
	}
	if _, err := w.Write(data); err != nil {
		return report, err
	}

	log.Info("geometries exported", zap.Int("features", report.Exported), zap.Int("empty", report.Empty))
	return report, nil
}
