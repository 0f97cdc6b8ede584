package geometry

import (
	"fmt"
	"strings"

	"github.com/lintang-b-s/osmgraph/pkg"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MultiPolygon assembles the relation's outer and inner way members into closed rings.
// Way pieces are stitched end to end; pieces that never close are dropped. Each inner
// ring becomes a hole of the first outer ring that contains it. ok is false when no
// outer ring closes.
func (r *Resolver) MultiPolygon(rel *osmstore.Relation) (orb.MultiPolygon, bool, error) {
	var outerPieces, innerPieces []orb.LineString
	for _, m := range rel.Members {
		if m.Type != osmstore.WayMember {
			continue
		}
		role := strings.ToLower(m.Role)
		if role != pkg.OUTER_ROLE && role != pkg.INNER_ROLE {
			continue
		}
		w, ok := r.store.Way(m.Ref)
		if !ok {
			continue
		}
		coords, err := r.CoordinatesOfWay(w)
		if err != nil {
			return nil, false, fmt.Errorf("relation %d: %w", rel.ID, err)
		}
		if len(coords) < 2 {
			continue
		}
		if role == pkg.OUTER_ROLE {
			outerPieces = append(outerPieces, coords)
		} else {
			innerPieces = append(innerPieces, coords)
		}
	}

	outers := stitchRings(outerPieces)
	if len(outers) == 0 {
		return nil, false, nil
	}

	mp := make(orb.MultiPolygon, len(outers))
	for i, ring := range outers {
		mp[i] = orb.Polygon{ring}
	}
	for _, hole := range stitchRings(innerPieces) {
		for i := range mp {
			if planar.RingContains(mp[i][0], hole[0]) {
				mp[i] = append(mp[i], hole)
				break
			}
		}
	}
	return mp, true, nil
}

// stitchRings joins line pieces sharing endpoints (in either direction) into closed rings.
func stitchRings(pieces []orb.LineString) []orb.Ring {
	used := make([]bool, len(pieces))
	rings := make([]orb.Ring, 0)

	for i := range pieces {
		if used[i] {
			continue
		}
		used[i] = true
		current := append(orb.LineString{}, pieces[i]...)

		for !closed(current) {
			extended := false
			end := current[len(current)-1]
			for j := range pieces {
				if used[j] {
					continue
				}
				piece := pieces[j]
				switch {
				case piece[0] == end:
					current = append(current, piece[1:]...)
				case piece[len(piece)-1] == end:
					reversed := append(orb.LineString{}, piece...)
					reversed.Reverse()
					current = append(current, reversed[1:]...)
				default:
					continue
				}
				used[j] = true
				extended = true
				break
			}
			if !extended {
				break
			}
		}

		if closed(current) && len(current) >= 4 {
			rings = append(rings, orb.Ring(current))
		}
	}
	return rings
}

func closed(ls orb.LineString) bool {
	return len(ls) > 1 && ls[0] == ls[len(ls)-1]
}
