package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lintang-b-s/osmgraph/pkg/engine"
	"github.com/lintang-b-s/osmgraph/pkg/geometry"
	"github.com/lintang-b-s/osmgraph/pkg/http"
	"github.com/lintang-b-s/osmgraph/pkg/http/usecases"
	"github.com/lintang-b-s/osmgraph/pkg/logger"
	"github.com/lintang-b-s/osmgraph/pkg/osmparser"
	"github.com/lintang-b-s/osmgraph/pkg/osmstore"
	"github.com/lintang-b-s/osmgraph/pkg/util"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

const VERSION = "v0.1.0"

var cli struct {
	Config   string      `help:"Config file (toml, yaml or json). Defaults to ./configuration/<APP_ENVIRONMENT>.toml." short:"c" type:"path"`
	LogLevel string      `help:"Logging verbosity (debug, info, warn, error), overrides log_level." short:"l"`
	OsmFile  string      `help:"OpenStreetMap extract (.osm.pbf, .osm or .osm.bz2), overrides osm_file." short:"f" type:"path"`
	Version  VersionFlag `help:"Print version information and quit" name:"version" short:"v"`

	Route struct {
		From string `help:"Origin as lat,lon." required:""`
		To   string `help:"Destination as lat,lon." required:""`
	} `cmd:"" help:"Prints the shortest road path between two coordinates."`
	Geometry struct {
		Relation int64 `help:"Relation id." xor:"object"`
		Way      int64 `help:"Way id." xor:"object"`
	} `cmd:"" help:"Prints the GeoJSON feature of one relation or way."`
	Export struct {
		Out string `help:"Output GeoJSON file." placeholder:"<output-file>" arg:"" type:"path"`
	} `cmd:"" help:"Writes all multipolygon and boundary relations as a GeoJSON FeatureCollection."`
	Serve struct {
		Port int `help:"HTTP port, overrides http.port."`
	} `cmd:"" help:"Builds the road graph once and serves the query API."`
}

type VersionFlag string

func (v VersionFlag) Decode(ctx *kong.DecodeContext) error { return nil }
func (v VersionFlag) IsBool() bool                         { return true }
func (v VersionFlag) BeforeApply(app *kong.Kong, vars kong.Vars) error {
	fmt.Println(vars["version"])
	app.Exit(0)
	return nil
}

func main() {
	kctx := kong.Parse(
		&cli,
		kong.Name("osmgraph"),
		kong.Description("Road graph, routing and geometry queries over OpenStreetMap extracts."),
		kong.Vars{
			"version": VERSION,
		},
	)

	cfg, err := util.LoadConfig(cli.Config)
	kctx.FatalIfErrorf(err)
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if cli.OsmFile != "" {
		cfg.OsmFile = cli.OsmFile
	}

	log, err := logger.NewWithLevel(cfg.LogLevel)
	kctx.FatalIfErrorf(err)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch kctx.Command() {
	case "route":
		err = runRoute(ctx, cfg, log)
	case "geometry":
		err = runGeometry(ctx, cfg, log)
	case "export <out>":
		err = runExport(ctx, cfg, log)
	case "serve":
		if cli.Serve.Port != 0 {
			cfg.HTTP.Port = cli.Serve.Port
		}
		err = runServe(ctx, cfg, log)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	kctx.FatalIfErrorf(err)
}

func runRoute(ctx context.Context, cfg util.Config, log *zap.Logger) error {
	origLat, origLon, err := util.ParseLatLon(cli.Route.From)
	if err != nil {
		return err
	}
	dstLat, dstLon, err := util.ParseLatLon(cli.Route.To)
	if err != nil {
		return err
	}

	e, err := engine.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	route, err := e.Route(origLat, origLon, dstLat, dstLon)
	if err != nil {
		return err
	}

	nodes := make([]string, 0, len(route.Path.Nodes))
	for _, id := range route.Path.OsmNodeIDs(e.GetGraph()) {
		nodes = append(nodes, fmt.Sprint(id))
	}
	fmt.Printf("origin:      node %d (%.1f m from query)\n", route.Origin.OsmID, route.Origin.Distance)
	fmt.Printf("destination: node %d (%.1f m from query)\n", route.Destination.OsmID, route.Destination.Distance)
	fmt.Printf("distance:    %.1f m\n", route.Distance)
	fmt.Printf("polyline:    %s\n", route.Polyline)
	fmt.Printf("nodes:       %s\n", strings.Join(nodes, " "))
	return nil
}

func loadStore(ctx context.Context, cfg util.Config, log *zap.Logger) (*osmstore.Store, error) {
	feed, err := osmparser.OpenFeed(ctx, cfg.OsmFile)
	if err != nil {
		return nil, err
	}
	defer feed.Close()
	return osmstore.BuildFromFeed(feed, log)
}

func runGeometry(ctx context.Context, cfg util.Config, log *zap.Logger) error {
	if cli.Geometry.Relation == 0 && cli.Geometry.Way == 0 {
		return errors.New("one of --relation or --way is required")
	}
	store, err := loadStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	// geometry queries need the store only
	e, err := engine.NewEngine(nil, nil, store, cfg, log)
	if err != nil {
		return err
	}
	geometryService := usecases.NewGeometryService(log, e)

	var feature *geojson.Feature
	if cli.Geometry.Relation != 0 {
		feature, err = geometryService.RelationGeometry(cli.Geometry.Relation)
	} else {
		feature, err = geometryService.WayGeometry(cli.Geometry.Way)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(feature)
}

func runExport(ctx context.Context, cfg util.Config, log *zap.Logger) error {
	store, err := loadStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	f, err := os.Create(cli.Export.Out)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := geometry.ExportGeometries(store, f, log)
	if err != nil {
		return err
	}
	log.Sugar().Infof("exported %d features to %s (%d empty, %d undecodable)",
		report.Exported, cli.Export.Out, report.Empty, report.DecodeErrors)
	return nil
}

func runServe(ctx context.Context, cfg util.Config, log *zap.Logger) error {
	e, err := engine.Build(ctx, cfg, log)
	if err != nil {
		return err
	}

	api := http.NewServer(log)
	routingService := usecases.NewRoutingService(log, e)
	geometryService := usecases.NewGeometryService(log, e)

	err = api.Use(ctx, cfg.HTTP, routingService, geometryService)
	log.Info("osmgraph server stopped", zap.Error(err))
	return err
}
