package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"gridfall/server"
	servernet "gridfall/server/internal/net"
	"gridfall/server/internal/telemetry"
	"gridfall/server/logging"
	loggingSinks "gridfall/server/logging/sinks"
	"gridfall/server/tiles"
	"gridfall/server/tiles/catalog"
)

type Config struct {
	Addr   string
	Logger telemetry.Logger
}

func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	logConfig := logging.DefaultConfig()
	if os.Getenv("LOG_DEBUG") == "1" {
		logConfig.MinimumSeverity = logging.SeverityDebug
	}
	if path := os.Getenv("LOG_JSON_PATH"); path != "" {
		logConfig.JSON.FilePath = path
	}

	namedSinks := []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	}
	var jsonFile *os.File
	if logConfig.JSON.FilePath != "" {
		f, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open json log file: %w", err)
		}
		jsonFile = f
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: loggingSinks.NewJSON(jsonFile, logConfig.JSON.FlushInterval),
		})
	}

	router, err := logging.NewRouter(nil, logConfig, namedSinks)
	if err != nil {
		if jsonFile != nil {
			jsonFile.Close()
		}
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		if cerr := router.Close(ctx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
		if jsonFile != nil {
			jsonFile.Close()
		}
	}()

	worldCfg := server.DefaultWorldConfig()
	if os.Getenv("SAFE_MODE") == "1" {
		worldCfg.SafeMode = true
	}

	level, err := buildLevel(worldCfg)
	if err != nil {
		return fmt.Errorf("failed to build level: %w", err)
	}

	metricsStore := &logging.Metrics{}

	hub, err := server.NewHub(worldCfg, level, router, telemetry.WrapMetrics(metricsStore))
	if err != nil {
		return fmt.Errorf("failed to construct hub: %w", err)
	}
	defer hub.Close()

	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{Metrics: metricsStore})

	srv := &http.Server{Addr: addr, Handler: handler}
	telemetryLogger.Printf("server listening on %s", srv.Addr)

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// buildLevel loads the tile catalog and walls the grid border so players
// stay inside the world.
func buildLevel(cfg server.WorldConfig) (*tiles.Level, error) {
	resolver, err := catalog.Load(catalog.DefaultPaths()...)
	if err != nil {
		return nil, err
	}
	manager, err := resolver.Apply(cfg.TileSize)
	if err != nil {
		return nil, err
	}

	level, err := tiles.NewLevel(manager, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	wallID, ok := resolver.Lookup("wall")
	if !ok {
		return nil, fmt.Errorf("tile catalog defines no wall tile")
	}
	if err := level.Fill(0, 0, cfg.Width-1, 0, wallID); err != nil {
		return nil, err
	}
	if err := level.Fill(0, cfg.Height-1, cfg.Width-1, cfg.Height-1, wallID); err != nil {
		return nil, err
	}
	if err := level.Fill(0, 0, 0, cfg.Height-1, wallID); err != nil {
		return nil, err
	}
	if err := level.Fill(cfg.Width-1, 0, cfg.Width-1, cfg.Height-1, wallID); err != nil {
		return nil, err
	}
	return level, nil
}
