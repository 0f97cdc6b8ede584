package http

import (
	"context"

	http_router "github.com/lintang-b-s/osmgraph/pkg/http/router"
	"github.com/lintang-b-s/osmgraph/pkg/http/router/controllers"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use serves the query API until ctx is cancelled and returns the first serving error.
func (s *Server) Use(
	ctx context.Context,
	cfg util.HTTPConfig,
	routingService controllers.RoutingService,
	geometryService controllers.GeometryService,
) error {
	api := http_router.NewAPI(s.Log)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gCtx, cfg, routingService, geometryService)
	})

	return g.Wait()
}
