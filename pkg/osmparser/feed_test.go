package osmparser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/paulmach/osm/osmxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleOsmXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <bounds minlat="-7.8" minlon="110.3" maxlat="-7.7" maxlon="110.4"/>
  <node id="1" lat="-7.7600000" lon="110.3700000" version="1"/>
  <node id="2" lat="-7.7610000" lon="110.3710000" version="1">
    <tag k="highway" v="traffic_signals"/>
  </node>
  <node id="3" lat="13.7563" lon="100.5018" version="1"/>
  <way id="10" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
    <tag k="name" v="Jalan Kaliurang"/>
  </way>
  <relation id="100" version="1">
    <member type="way" ref="10" role="outer"/>
    <member type="node" ref="2" role="label"/>
    <member type="relation" ref="101" role=""/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>`

func TestScannerFeed(t *testing.T) {
	scanner := osmxml.New(context.Background(), strings.NewReader(sampleOsmXML))
	feed := NewScannerFeed(scanner)
	defer feed.Close()

	store, err := osmstore.BuildFromFeed(feed, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 3, store.NumNodes())
	assert.Equal(t, 1, store.NumWays())
	assert.Equal(t, 1, store.NumRelations())

	t.Run("node coordinates are decimicro degrees", func(t *testing.T) {
		n, ok := store.Node(3)
		require.True(t, ok)
		assert.Equal(t, int64(137563000), n.Lat)
		assert.Equal(t, int64(1005018000), n.Lon)

		n, ok = store.Node(1)
		require.True(t, ok)
		assert.Equal(t, int64(-77600000), n.Lat)
		assert.Equal(t, "", n.Find("highway"))

		n, ok = store.Node(2)
		require.True(t, ok)
		assert.Equal(t, "traffic_signals", n.Find("highway"))
	})

	t.Run("way keeps node order and tags", func(t *testing.T) {
		w, ok := store.Way(10)
		require.True(t, ok)
		assert.Equal(t, []int64{1, 2, 3}, w.Nodes)
		assert.Equal(t, "residential", w.Find("highway"))
		assert.Equal(t, "Jalan Kaliurang", w.Find("name"))
	})

	t.Run("relation members keep type ref and role", func(t *testing.T) {
		rel, ok := store.Relation(100)
		require.True(t, ok)
		assert.Equal(t, []osmstore.Member{
			{Type: osmstore.WayMember, Ref: 10, Role: "outer"},
			{Type: osmstore.NodeMember, Ref: 2, Role: "label"},
			{Type: osmstore.RelationMember, Ref: 101, Role: ""},
		}, rel.Members)
		assert.Equal(t, "multipolygon", rel.Find("type"))
	})
}

func TestToDecimicro(t *testing.T) {
	testCases := []struct {
		name string
		deg  float64
		want int64
	}{
		{name: "zero", deg: 0, want: 0},
		{name: "positive", deg: 13.7563, want: 137563000},
		{name: "negative", deg: -7.7600001, want: -77600001},
		{name: "max longitude", deg: 180, want: 1800000000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, toDecimicro(tc.deg))
		})
	}
}

func TestOpenFeed(t *testing.T) {
	dir := t.TempDir()

	t.Run("osm xml file", func(t *testing.T) {
		path := filepath.Join(dir, "map.osm")
		require.NoError(t, os.WriteFile(path, []byte(sampleOsmXML), 0o644))

		feed, err := OpenFeed(context.Background(), path)
		require.NoError(t, err)
		defer feed.Close()

		store, err := osmstore.BuildFromFeed(feed, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, 3, store.NumNodes())
		assert.Equal(t, 1, store.NumWays())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := OpenFeed(context.Background(), filepath.Join(dir, "map.geojson"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenFeed(context.Background(), filepath.Join(dir, "missing.osm.pbf"))
		assert.Error(t, err)
	})
}
