package osmparser

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/osmgraph/pkg"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// ScannerFeed adapts an osm.Scanner into an osmstore.Feed. Objects other than nodes,
// ways and relations (bounds, changesets, notes) are skipped.
type ScannerFeed struct {
	scanner osm.Scanner
	closers []io.Closer
	current osmstore.Record
}

func NewScannerFeed(scanner osm.Scanner, closers ...io.Closer) *ScannerFeed {
	return &ScannerFeed{
		scanner: scanner,
		closers: closers,
	}
}

func (f *ScannerFeed) Next() bool {
	for f.scanner.Scan() {
		rec := convertObject(f.scanner.Object())
		if rec == nil {
			continue
		}
		f.current = rec
		return true
	}
	f.current = nil
	return false
}

func (f *ScannerFeed) Record() osmstore.Record {
	return f.current
}

func (f *ScannerFeed) Err() error {
	return f.scanner.Err()
}

// Close closes the scanner and then the underlying readers, innermost last.
func (f *ScannerFeed) Close() error {
	err := f.scanner.Close()
	for i := len(f.closers) - 1; i >= 0; i-- {
		if cerr := f.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenFeed opens an openstreetmap extract. The decoder is picked by file extension:
// .pbf (osmpbf), .osm (osmxml) or .osm.bz2 (bzip2 + osmxml).
func OpenFeed(ctx context.Context, path string) (*ScannerFeed, error) {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".pbf") && !strings.HasSuffix(lower, ".osm") &&
		!strings.HasSuffix(lower, ".osm.bz2") {
		return nil, fmt.Errorf("unsupported map file %s: want .osm.pbf, .osm or .osm.bz2", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}

	switch {
	case strings.HasSuffix(lower, ".pbf"):
		return NewScannerFeed(osmpbf.New(ctx, f, 0), f), nil
	case strings.HasSuffix(lower, ".osm.bz2"):
		br, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open bzip2 stream: %w", err)
		}
		return NewScannerFeed(osmxml.New(ctx, br), f, br), nil
	default:
		return NewScannerFeed(osmxml.New(ctx, f), f), nil
	}
}

func convertObject(o osm.Object) osmstore.Record {
	switch obj := o.(type) {
	case *osm.Node:
		return &osmstore.Node{
			ID:   int64(obj.ID),
			Lat:  toDecimicro(obj.Lat),
			Lon:  toDecimicro(obj.Lon),
			Tags: convertTags(obj.Tags),
		}
	case *osm.Way:
		nodes := make([]int64, len(obj.Nodes))
		for i, wn := range obj.Nodes {
			nodes[i] = int64(wn.ID)
		}
		return &osmstore.Way{
			ID:    int64(obj.ID),
			Nodes: nodes,
			Tags:  convertTags(obj.Tags),
		}
	case *osm.Relation:
		members := make([]osmstore.Member, 0, len(obj.Members))
		for _, m := range obj.Members {
			var mt osmstore.MemberType
			switch m.Type {
			case osm.TypeNode:
				mt = osmstore.NodeMember
			case osm.TypeWay:
				mt = osmstore.WayMember
			case osm.TypeRelation:
				mt = osmstore.RelationMember
			default:
				continue
			}
			members = append(members, osmstore.Member{Type: mt, Ref: m.Ref, Role: m.Role})
		}
		return &osmstore.Relation{
			ID:      int64(obj.ID),
			Members: members,
			Tags:    convertTags(obj.Tags),
		}
	}
	return nil
}

// toDecimicro converts degrees to fixed-point degrees * 1e7.
func toDecimicro(deg float64) int64 {
	return int64(math.Round(deg * pkg.DECIMICRO_SCALE))
}

func convertTags(tags osm.Tags) osmstore.Tags {
	if len(tags) == 0 {
		return nil
	}
	return osmstore.Tags(tags.Map())
}
