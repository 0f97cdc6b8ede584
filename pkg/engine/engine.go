package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/osmgraph/pkg/concurrent"
	"github.com/lintang-b-s/osmgraph/pkg/datastructure"
	"github.com/lintang-b-s/osmgraph/pkg/engine/routing"
	"github.com/lintang-b-s/osmgraph/pkg/geometry"
	"github.com/lintang-b-s/osmgraph/pkg/landmark"
	"github.com/lintang-b-s/osmgraph/pkg/osmparser"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/lintang-b-s/osmgraph/pkg/spatialindex"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var (
	ErrNoVertex        = errors.New("road graph has no vertices")
	ErrNoPath          = errors.New("no path between origin and destination")
	ErrBudgetExhausted = errors.New("search budget exhausted")
)

type pathKey struct {
	source, target datastructure.Index
}

// Engine answers nearest-vertex, routing and geometry queries over one built road graph.
// It is safe for concurrent use.
type Engine struct {
	graph    *datastructure.Graph
	rtree    *spatialindex.Rtree
	store    *osmstore.Store
	resolver *geometry.Resolver
	cfg      util.Config
	logger   *zap.Logger

	pathCache *lru.Cache[pathKey, routing.PathResult]
	landmarks *landmark.Landmark
}

type EngineOption func(*Engine)

// WithLandmarks makes every search use lm as an additional lower bound.
func WithLandmarks(lm *landmark.Landmark) EngineOption {
	return func(e *Engine) {
		e.landmarks = lm
	}
}

// NewEngine wires the query side. store may be nil, in which case geometry queries
// report util.ErrNotFound.
func NewEngine(graph *datastructure.Graph, rtree *spatialindex.Rtree, store *osmstore.Store,
	cfg util.Config, logger *zap.Logger, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		graph:  graph,
		rtree:  rtree,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.landmarks != nil && e.landmarks.NumberOfVertices() != graph.NumberOfVertices() {
		return nil, util.WrapErrorf(nil, util.ErrConflict,
			"landmark table covers %d vertices, graph has %d", e.landmarks.NumberOfVertices(), graph.NumberOfVertices())
	}
	if store != nil {
		e.resolver = geometry.NewResolver(store)
	}
	if cfg.Search.CacheSize > 0 {
		cache, err := lru.New[pathKey, routing.PathResult](cfg.Search.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create path cache: %w", err)
		}
		e.pathCache = cache
	}
	return e, nil
}

// Build ingests cfg.OsmFile and prepares every query structure.
func Build(ctx context.Context, cfg util.Config, logger *zap.Logger) (*Engine, error) {
	logger.Info("Reading openstreetmap extract", zap.String("osm_file", cfg.OsmFile))
	feed, err := osmparser.OpenFeed(ctx, cfg.OsmFile)
	if err != nil {
		return nil, err
	}
	defer feed.Close()

	store, err := osmstore.BuildFromFeed(feed, logger)
	if err != nil {
		return nil, err
	}

	graph, report := osmparser.NewGraphBuilder(cfg.RoutableKey, logger).Build(store)
	logger.Sugar().Infof("graph build report: %s", report)

	rtree := spatialindex.NewRtree()
	rtree.Build(graph, cfg.Search.RadiusKm, logger)

	opts := make([]EngineOption, 0)
	if cfg.Search.Landmarks > 0 {
		lm, err := loadLandmarks(ctx, cfg, graph, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLandmarks(lm))
	}

	return NewEngine(graph, rtree, store, cfg, logger, opts...)
}

// loadLandmarks reads cfg.Search.LandmarkFile when it matches graph, otherwise computes the
// table and writes it back.
func loadLandmarks(ctx context.Context, cfg util.Config, graph *datastructure.Graph,
	logger *zap.Logger) (*landmark.Landmark, error) {
	if cfg.Search.LandmarkFile != "" {
		lm, err := landmark.ReadLandmark(cfg.Search.LandmarkFile)
		switch {
		case err == nil && lm.NumberOfVertices() == graph.NumberOfVertices() &&
			len(lm.Landmarks()) == cfg.Search.Landmarks:
			logger.Info("landmarks loaded", zap.String("landmark_file", cfg.Search.LandmarkFile))
			return lm, nil
		case err == nil:
			logger.Warn("landmark file does not match the graph, recomputing",
				zap.String("landmark_file", cfg.Search.LandmarkFile))
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("unreadable landmark file, recomputing",
				zap.String("landmark_file", cfg.Search.LandmarkFile), zap.Error(err))
		}
	}

	lm := landmark.NewLandmark()
	if err := lm.Preprocess(ctx, cfg.Search.Landmarks, cfg.Batch.Workers, graph, logger); err != nil {
		return nil, err
	}
	if cfg.Search.LandmarkFile != "" {
		if err := lm.WriteLandmark(cfg.Search.LandmarkFile); err != nil {
			logger.Warn("could not write landmark file", zap.Error(err))
		}
	}
	return lm, nil
}

func (e *Engine) GetGraph() *datastructure.Graph {
	return e.graph
}

func (e *Engine) GetStore() *osmstore.Store {
	return e.store
}

type Nearest struct {
	Vertex   datastructure.Index
	OsmID    int64
	Lat      float64
	Lon      float64
	Distance float64 // meter, from the query point
}

// Nearest returns the graph vertex closest to (lat, lon).
func (e *Engine) Nearest(lat, lon float64) (Nearest, bool) {
	u, dist, ok := e.rtree.Nearest(lat, lon)
	if !ok {
		return Nearest{}, false
	}
	v := e.graph.GetVertex(u)
	return Nearest{
		Vertex:   u,
		OsmID:    v.GetOsmID(),
		Lat:      v.GetLat(),
		Lon:      v.GetLon(),
		Distance: dist,
	}, true
}

// ShortestPath runs A* between two vertices. Found paths are cached.
func (e *Engine) ShortestPath(source, target datastructure.Index) (routing.PathResult, error) {
	key := pathKey{source, target}
	if e.pathCache != nil {
		if path, ok := e.pathCache.Get(key); ok {
			return path, nil
		}
	}

	opts := []routing.AStarOption{routing.WithMaxSettled(e.cfg.Search.MaxSettled)}
	if e.landmarks != nil {
		opts = append(opts, routing.WithLowerBound(e.landmarks))
	}
	as := routing.NewAStar(e.graph, opts...)
	path, ok := as.ShortestPath(source, target)
	if !ok {
		if as.BudgetExhausted() {
			return routing.PathResult{}, util.WrapErrorf(ErrBudgetExhausted, util.ErrInternalServerError,
				"gave up after settling %d vertices", as.NumSettledNodes())
		}
		return routing.PathResult{}, util.WrapErrorf(ErrNoPath, util.ErrNotFound,
			"vertex %d cannot reach vertex %d", source, target)
	}

	if e.pathCache != nil {
		e.pathCache.Add(key, path)
	}
	return path, nil
}

type Route struct {
	Origin      Nearest
	Destination Nearest
	Path        routing.PathResult
	Distance    float64 // meter, along the graph between Origin and Destination
	Polyline    string
}

// Route snaps both coordinates to their nearest vertices and finds the shortest path
// between them.
func (e *Engine) Route(origLat, origLon, dstLat, dstLon float64) (Route, error) {
	origin, ok := e.Nearest(origLat, origLon)
	if !ok {
		return Route{}, util.WrapErrorf(ErrNoVertex, util.ErrNotFound, "origin")
	}
	destination, ok := e.Nearest(dstLat, dstLon)
	if !ok {
		return Route{}, util.WrapErrorf(ErrNoVertex, util.ErrNotFound, "destination")
	}

	path, err := e.ShortestPath(origin.Vertex, destination.Vertex)
	if err != nil {
		return Route{}, err
	}
	return Route{
		Origin:      origin,
		Destination: destination,
		Path:        path,
		Distance:    path.Distance,
		Polyline:    path.Polyline(e.graph),
	}, nil
}

type RouteRequest struct {
	OriginLat      float64
	OriginLon      float64
	DestinationLat float64
	DestinationLon float64
}

type RouteResult struct {
	Route Route
	Err   error
}

// RouteBatch answers independent route requests on cfg.Batch.Workers goroutines. Results
// are in request order. Requests not started before ctx is cancelled report ctx.Err().
func (e *Engine) RouteBatch(ctx context.Context, reqs []RouteRequest) []RouteResult {
	return concurrent.Map(ctx, e.cfg.Batch.Workers, reqs, func(ctx context.Context, req RouteRequest) RouteResult {
		if err := ctx.Err(); err != nil {
			return RouteResult{Err: err}
		}
		route, err := e.Route(req.OriginLat, req.OriginLon, req.DestinationLat, req.DestinationLon)
		return RouteResult{Route: route, Err: err}
	})
}

// RelationFeature returns the GeoJSON feature of relation id.
func (e *Engine) RelationFeature(id int64) (*geojson.Feature, error) {
	if e.store == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "relation %d not found", id)
	}
	rel, ok := e.store.Relation(id)
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "relation %d not found", id)
	}
	f, ok, err := e.resolver.RelationFeature(rel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "relation %d has no resolvable geometry", id)
	}
	return f, nil
}

// WayFeature returns the GeoJSON feature of way id.
func (e *Engine) WayFeature(id int64) (*geojson.Feature, error) {
	if e.store == nil {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "way %d not found", id)
	}
	w, ok := e.store.Way(id)
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "way %d not found", id)
	}
	f, ok, err := e.resolver.WayFeature(w)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.WrapErrorf(nil, util.ErrNotFound, "way %d has no resolvable geometry", id)
	}
	return f, nil
}
