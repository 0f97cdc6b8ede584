package osmstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingFeed struct {
	*SliceFeed
	err error
}

func (f *failingFeed) Err() error { return f.err }

func TestBuildFromFeed(t *testing.T) {
	feed := NewSliceFeed(
		&Node{ID: 1, Lat: 137563000, Lon: 1005018000, Tags: Tags{"amenity": "cafe"}},
		&Way{ID: 1, Nodes: []int64{1, 2}, Tags: Tags{"highway": "residential"}},
		&Relation{ID: 1, Members: []Member{{Type: WayMember, Ref: 1, Role: "outer"}}},
		&Node{ID: 2, Lat: 10, Lon: 20},
	)

	s, err := BuildFromFeed(feed, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, s.NumNodes())
	assert.Equal(t, 1, s.NumWays())
	assert.Equal(t, 1, s.NumRelations())

	// same numeric id in the three spaces does not collide
	n, ok := s.Node(1)
	require.True(t, ok)
	assert.Equal(t, "cafe", n.Find("amenity"))
	w, ok := s.Way(1)
	require.True(t, ok)
	assert.True(t, w.Has("highway"))
	r, ok := s.Relation(1)
	require.True(t, ok)
	assert.Len(t, r.Members, 1)
}

func TestStoreOverwriteAndMiss(t *testing.T) {
	testCases := []struct {
		name   string
		insert []*Node
		lookup int64
		want   *Node
	}{
		{
			name:   "missing id",
			insert: []*Node{{ID: 1}},
			lookup: 2,
		},
		{
			name:   "overwrite by id keeps the last record",
			insert: []*Node{{ID: 5, Lat: 1}, {ID: 5, Lat: 2}},
			lookup: 5,
			want:   &Node{ID: 5, Lat: 2},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			for _, n := range tt.insert {
				s.AddNode(n)
			}
			got, ok := s.Node(tt.lookup)
			if tt.want == nil {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, s.NumNodes())
		})
	}
}

func TestBuildFromFeedPropagatesFeedError(t *testing.T) {
	feedErr := errors.New("truncated block")
	feed := &failingFeed{SliceFeed: NewSliceFeed(&Node{ID: 1}), err: feedErr}

	_, err := BuildFromFeed(feed, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, feedErr)
}

func TestForEachWayIsOrdered(t *testing.T) {
	s := NewStore()
	for _, id := range []int64{30, 10, 20} {
		s.AddWay(&Way{ID: id})
	}
	var got []int64
	s.ForEachWay(func(w *Way) { got = append(got, w.ID) })
	assert.Equal(t, []int64{10, 20, 30}, got)
}
