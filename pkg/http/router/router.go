package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/osmgraph/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/osmgraph/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/osmgraph/pkg/http/server"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Handler builds the routes and the middleware chain. A positive cfg.RateLimit enables
// the token bucket limiter.
func (api *API) Handler(
	cfg util.HTTPConfig,
	routingService controllers.RoutingService,
	geometryService controllers.GeometryService,
) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	group := router_helper.NewRouteGroup(router, "/api")

	controllers.New(routingService, api.log).Routes(group)
	controllers.NewGeometryAPI(geometryService, api.log).Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, EnforceJSONHandler, api.recoverPanic,
		RealIP, Heartbeat("healthz"), Logger(api.log)}
	if cfg.RateLimit > 0 {
		mwChain = append(mwChain, Limit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	}
	return alice.New(mwChain...).Then(router)
}

// Run serves the API until ctx is cancelled or the listener fails.
func (api *API) Run(
	ctx context.Context,
	cfg util.HTTPConfig,
	routingService controllers.RoutingService,
	geometryService controllers.GeometryService,
) error {
	api.log.Info("Run httprouter API")

	handler := api.Handler(cfg, routingService, geometryService)
	srv := http_server.New(ctx, handler, http_server.Config{Port: cfg.Port, Timeout: cfg.Timeout})
	api.log.Info(fmt.Sprintf("API run on port %d", cfg.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		api.log.Error("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
