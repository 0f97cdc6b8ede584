package osmstore

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Store holds every ingested record keyed by identifier. Node, way and relation
// identifier spaces are independent. It is populated once and read-only afterwards.
type Store struct {
	nodes     map[int64]*Node
	ways      map[int64]*Way
	relations map[int64]*Relation
}

func NewStore() *Store {
	return &Store{
		nodes:     make(map[int64]*Node),
		ways:      make(map[int64]*Way),
		relations: make(map[int64]*Relation),
	}
}

func (s *Store) AddNode(n *Node) {
	s.nodes[n.ID] = n
}

func (s *Store) AddWay(w *Way) {
	s.ways[w.ID] = w
}

func (s *Store) AddRelation(r *Relation) {
	s.relations[r.ID] = r
}

func (s *Store) Node(id int64) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s *Store) Way(id int64) (*Way, bool) {
	w, ok := s.ways[id]
	return w, ok
}

func (s *Store) Relation(id int64) (*Relation, bool) {
	r, ok := s.relations[id]
	return r, ok
}

func (s *Store) NumNodes() int     { return len(s.nodes) }
func (s *Store) NumWays() int      { return len(s.ways) }
func (s *Store) NumRelations() int { return len(s.relations) }

// ForEachWay visits ways in ascending id order.
func (s *Store) ForEachWay(fn func(w *Way)) {
	for _, id := range sortedKeys(s.ways) {
		fn(s.ways[id])
	}
}

// ForEachRelation visits relations in ascending id order.
func (s *Store) ForEachRelation(fn func(r *Relation)) {
	for _, id := range sortedKeys(s.relations) {
		fn(s.relations[id])
	}
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Add classifies a record into the matching identifier space.
func (s *Store) Add(rec Record) error {
	switch r := rec.(type) {
	case *Node:
		s.AddNode(r)
	case *Way:
		s.AddWay(r)
	case *Relation:
		s.AddRelation(r)
	default:
		return fmt.Errorf("unknown record type %T", rec)
	}
	return nil
}

// BuildFromFeed drains feed into a new store.
func BuildFromFeed(feed Feed, log *zap.Logger) (*Store, error) {
	s := NewStore()
	count := 0
	for feed.Next() {
		if err := s.Add(feed.Record()); err != nil {
			return nil, err
		}
		count++
		if count%1_000_000 == 0 {
			log.Sugar().Infof("reading openstreetmap records: %d...", count)
		}
	}
	if err := feed.Err(); err != nil {
		return nil, fmt.Errorf("reading record feed: %w", err)
	}

	log.Info("record store built",
		zap.Int("nodes", s.NumNodes()),
		zap.Int("ways", s.NumWays()),
		zap.Int("relations", s.NumRelations()))
	return s, nil
}
