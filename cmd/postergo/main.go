package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"postergo/internal/api"
	"postergo/pkg/cache"
	"postergo/pkg/config"
	"postergo/pkg/db"
	"postergo/pkg/layout"
	"postergo/pkg/logging"
	"postergo/pkg/palette"
	"postergo/pkg/poster"
	"postergo/pkg/render"
	"postergo/pkg/request"
	"postergo/pkg/store"
	"postergo/pkg/tiles"
	"postergo/pkg/tracker"
	"postergo/pkg/version"
)

// cachePruneAge is how long fetched tiles stay in the sqlite cache.
const cachePruneAge = 30 * 24 * time.Hour

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	// Tile provider contact details may live in .env instead of the config.
	_ = godotenv.Load()

	if *initConfig {
		if err := config.GenerateDefault("configs/postergo.yaml"); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: configs/postergo.yaml")
		return
	}

	if err := run(context.Background(), "configs/postergo.yaml"); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Postergo started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()
	st := store.NewSQLiteStore(dbConn)

	if err := dbConn.PruneCache(cachePruneAge); err != nil {
		slog.Error("Cache pruning failed", "error", err)
	}

	tr := tracker.New()

	manager, err := layout.NewManager(appCfg.Template.Path)
	if err != nil {
		return fmt.Errorf("failed to load poster template: %w", err)
	}

	pal := palette.Default()
	charts := render.New(appCfg.Renderer, pal)

	var mapRenderer render.MapRenderer = charts
	if appCfg.Tiles.Enabled {
		reqClient := request.New(cache.NewStoreCache(st), tr, appCfg.Request)
		mapRenderer = render.NewTiledMap(charts, tiles.New(appCfg.Tiles, reqClient))
		slog.Info("Tile-backed map renderer enabled", "url", appCfg.Tiles.URL)
	}

	gen := poster.NewGenerator(manager, layout.NewScanner(appCfg.Scanner), charts, mapRenderer, pal, st, st, tr)

	return runServer(ctx, appCfg, gen, st, tr, manager)
}

func runServer(ctx context.Context, cfg *config.Config, gen *poster.Generator, st store.Store, tr *tracker.Tracker, manager *layout.Manager) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewPosterHandler(gen, st, st),
		api.NewStatsHandler(tr, st),
		api.NewTemplateHandler(manager),
		shutdownFunc,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
