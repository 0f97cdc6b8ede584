package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lintang-b-s/osmgraph/pkg"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/paulmach/orb"
)

var ErrDecode = errors.New("coordinate decode error")

// DecodeError reports a node whose fixed-point coordinate is not a valid floating coordinate.
type DecodeError struct {
	NodeID int64
	Lat    int64
	Lon    int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("node %d: cannot decode fixed-point coordinate (%d, %d)", e.NodeID, e.Lat, e.Lon)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// RecordReader is the read side of the record store.
type RecordReader interface {
	Node(id int64) (*osmstore.Node, bool)
	Way(id int64) (*osmstore.Way, bool)
	Relation(id int64) (*osmstore.Relation, bool)
}

// Resolver expands relations into coordinate sequences. It keeps no mutable state and is
// safe for concurrent use over a read-only store.
type Resolver struct {
	store RecordReader
}

func NewResolver(store RecordReader) *Resolver {
	return &Resolver{store: store}
}

// CoordinateOf returns (lon, lat) of n.
func CoordinateOf(n *osmstore.Node) (orb.Point, error) {
	lat := float64(n.Lat) / pkg.DECIMICRO_SCALE
	lon := float64(n.Lon) / pkg.DECIMICRO_SCALE
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return orb.Point{}, &DecodeError{NodeID: n.ID, Lat: n.Lat, Lon: n.Lon}
	}
	return orb.Point{lon, lat}, nil
}

func (r *Resolver) CoordinateOf(n *osmstore.Node) (orb.Point, error) {
	return CoordinateOf(n)
}

func (r *Resolver) coordinateOfID(id int64) (orb.Point, bool, error) {
	n, ok := r.store.Node(id)
	if !ok {
		return orb.Point{}, false, nil
	}
	p, err := CoordinateOf(n)
	if err != nil {
		return orb.Point{}, false, err
	}
	return p, true, nil
}

// CoordinatesOfWay maps the way's node references to coordinates, skipping references
// that are not in the store.
func (r *Resolver) CoordinatesOfWay(w *osmstore.Way) (orb.LineString, error) {
	coords := make(orb.LineString, 0, len(w.Nodes))
	for _, id := range w.Nodes {
		p, ok, err := r.coordinateOfID(id)
		if err != nil {
			return nil, fmt.Errorf("way %d: %w", w.ID, err)
		}
		if ok {
			coords = append(coords, p)
		}
	}
	return coords, nil
}

func isOuter(role string) bool {
	return strings.ToLower(role) == pkg.OUTER_ROLE
}

// resolvePath holds the relation ids currently being resolved on the call stack.
type resolvePath map[int64]struct{}

func (p resolvePath) enter(id int64) bool {
	if _, ok := p[id]; ok {
		return false
	}
	p[id] = struct{}{}
	return true
}

func (p resolvePath) leave(id int64) {
	delete(p, id)
}

// OuterRingCoordinates flattens the coordinates of all members with role "outer",
// recursing into nested relations. ok is false when nothing resolved.
func (r *Resolver) OuterRingCoordinates(rel *osmstore.Relation) (orb.LineString, bool, error) {
	path := resolvePath{rel.ID: {}}
	coords, err := r.membersCoordinates(rel, path, true)
	if err != nil {
		return nil, false, err
	}
	if len(coords) == 0 {
		return nil, false, nil
	}
	return coords, true, nil
}

// AllMemberCoordinates is OuterRingCoordinates without the role filter.
func (r *Resolver) AllMemberCoordinates(rel *osmstore.Relation) (orb.LineString, bool, error) {
	path := resolvePath{rel.ID: {}}
	coords, err := r.membersCoordinates(rel, path, false)
	if err != nil {
		return nil, false, err
	}
	if len(coords) == 0 {
		return nil, false, nil
	}
	return coords, true, nil
}

func (r *Resolver) membersCoordinates(rel *osmstore.Relation, path resolvePath, outerOnly bool) (orb.LineString, error) {
	coords := orb.LineString{}
	for _, m := range rel.Members {
		if outerOnly && !isOuter(m.Role) {
			continue
		}
		switch m.Type {
		case osmstore.NodeMember:
			p, ok, err := r.coordinateOfID(m.Ref)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
			}
			if ok {
				coords = append(coords, p)
			}
		case osmstore.WayMember:
			w, ok := r.store.Way(m.Ref)
			if !ok {
				continue
			}
			wc, err := r.CoordinatesOfWay(w)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
			}
			coords = append(coords, wc...)
		case osmstore.RelationMember:
			nested, err := r.nestedCoordinates(m.Ref, path, outerOnly)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
			}
			coords = append(coords, nested...)
		}
	}
	return coords, nil
}

// nestedCoordinates resolves a member relation unless it is already on the active path.
func (r *Resolver) nestedCoordinates(id int64, path resolvePath, outerOnly bool) (orb.LineString, error) {
	if !path.enter(id) {
		return nil, nil
	}
	defer path.leave(id)

	nested, ok := r.store.Relation(id)
	if !ok {
		return nil, nil
	}
	return r.membersCoordinates(nested, path, outerOnly)
}

// NonOuterMemberDetail describes every member whose role is not "outer".
func (r *Resolver) NonOuterMemberDetail(rel *osmstore.Relation) ([]MemberDetail, error) {
	path := resolvePath{rel.ID: {}}
	details := make([]MemberDetail, 0)
	for _, m := range rel.Members {
		if isOuter(m.Role) {
			continue
		}
		switch m.Type {
		case osmstore.NodeMember:
			n, ok := r.store.Node(m.Ref)
			if !ok {
				continue
			}
			p, err := CoordinateOf(n)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
			}
			details = append(details, NodeDetail{ID: n.ID, Role: m.Role, Tags: n.Tags, Coordinate: p})
		case osmstore.WayMember:
			w, ok := r.store.Way(m.Ref)
			if !ok {
				continue
			}
			coords, err := r.CoordinatesOfWay(w)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
			}
			details = append(details, WayDetail{ID: w.ID, Role: m.Role, Tags: w.Tags, Coordinates: coords})
		case osmstore.RelationMember:
			if _, onPath := path[m.Ref]; onPath {
				continue
			}
			nested, ok := r.store.Relation(m.Ref)
			if !ok {
				continue
			}
			coords, err := r.nestedCoordinates(m.Ref, path, true)
			if err != nil {
				return nil, fmt.Errorf("relation %d: %w", rel.ID, err)
			}
			details = append(details, RelationDetail{ID: nested.ID, Role: m.Role, Tags: nested.Tags, Coordinates: coords})
		}
	}
	return details, nil
}
