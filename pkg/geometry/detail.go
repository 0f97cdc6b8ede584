package geometry

import (
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/paulmach/orb"
)

// MemberDetail is one non-outer relation member: NodeDetail, WayDetail or RelationDetail.
type MemberDetail interface {
	MemberType() osmstore.MemberType
	MemberID() int64
	Geometry() orb.Geometry
	// Properties returns the serialisable form with coordinates as [lon, lat] pairs.
	Properties() map[string]interface{}
}

type NodeDetail struct {
	ID         int64
	Role       string
	Tags       osmstore.Tags
	Coordinate orb.Point
}

type WayDetail struct {
	ID          int64
	Role        string
	Tags        osmstore.Tags
	Coordinates orb.LineString
}

type RelationDetail struct {
	ID          int64
	Role        string
	Tags        osmstore.Tags
	Coordinates orb.LineString // outer coordinates of the nested relation
}

func (d NodeDetail) MemberType() osmstore.MemberType     { return osmstore.NodeMember }
func (d WayDetail) MemberType() osmstore.MemberType      { return osmstore.WayMember }
func (d RelationDetail) MemberType() osmstore.MemberType { return osmstore.RelationMember }

func (d NodeDetail) MemberID() int64     { return d.ID }
func (d WayDetail) MemberID() int64      { return d.ID }
func (d RelationDetail) MemberID() int64 { return d.ID }

func (d NodeDetail) Geometry() orb.Geometry     { return d.Coordinate }
func (d WayDetail) Geometry() orb.Geometry      { return d.Coordinates }
func (d RelationDetail) Geometry() orb.Geometry { return orb.MultiPoint(d.Coordinates) }

func (d NodeDetail) Properties() map[string]interface{} {
	return map[string]interface{}{
		"type":       d.MemberType().String(),
		"id":         d.ID,
		"role":       d.Role,
		"tags":       tagsOrEmpty(d.Tags),
		"coordinate": pointPair(d.Coordinate),
	}
}

func (d WayDetail) Properties() map[string]interface{} {
	return map[string]interface{}{
		"type":        d.MemberType().String(),
		"id":          d.ID,
		"role":        d.Role,
		"tags":        tagsOrEmpty(d.Tags),
		"coordinates": pointPairs(d.Coordinates),
	}
}

func (d RelationDetail) Properties() map[string]interface{} {
	return map[string]interface{}{
		"type":        d.MemberType().String(),
		"id":          d.ID,
		"role":        d.Role,
		"tags":        tagsOrEmpty(d.Tags),
		"coordinates": pointPairs(d.Coordinates),
	}
}

func pointPair(p orb.Point) [2]float64 {
	return [2]float64{p.Lon(), p.Lat()}
}

func pointPairs(ls orb.LineString) [][2]float64 {
	pairs := make([][2]float64, len(ls))
	for i, p := range ls {
		pairs[i] = pointPair(p)
	}
	return pairs
}

func tagsOrEmpty(t osmstore.Tags) map[string]string {
	if t == nil {
		return map[string]string{}
	}
	return t
}
