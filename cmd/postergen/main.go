// postergen renders a single poster from the command line. It accepts a
// GPX file or an activity JSON document and writes the finished SVG.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"postergo/pkg/cache"
	"postergo/pkg/config"
	"postergo/pkg/gpxio"
	"postergo/pkg/layout"
	"postergo/pkg/model"
	"postergo/pkg/palette"
	"postergo/pkg/poster"
	"postergo/pkg/render"
	"postergo/pkg/request"
	"postergo/pkg/tiles"
	"postergo/pkg/tracker"
)

var (
	inPath       = flag.String("in", "", "Input activity: .gpx track or .json activity record")
	outPath      = flag.String("out", "poster.svg", "Output SVG path")
	templatePath = flag.String("template", "", "Template override (default: config template path)")
	colorSpec    = flag.String("colors", "", "Palette overrides, e.g. primary=#FF5500,background=#FFFFFF")
	useTiles     = flag.Bool("tiles", false, "Draw the track over fetched map tiles")
	configPath   = flag.String("config", "configs/postergo.yaml", "Config file path")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := generate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "postergen: %v\n", err)
		os.Exit(1)
	}
}

func generate(ctx context.Context) error {
	cfg := loadConfig()

	activity, err := loadActivity(*inPath)
	if err != nil {
		return err
	}

	pal, err := buildPalette(*colorSpec)
	if err != nil {
		return err
	}

	path := cfg.Template.Path
	if *templatePath != "" {
		path = *templatePath
	}
	manager, err := layout.NewManager(path)
	if err != nil {
		return err
	}

	charts := render.New(cfg.Renderer, pal)
	var mapRenderer render.MapRenderer = charts
	if *useTiles {
		tr := tracker.New()
		reqClient := request.New(cache.Null{}, tr, cfg.Request)
		mapRenderer = render.NewTiledMap(charts, tiles.New(cfg.Tiles, reqClient))
	}

	gen := poster.NewGenerator(manager, layout.NewScanner(cfg.Scanner), charts, mapRenderer, pal, nil, nil, nil)
	doc, err := gen.Generate(ctx, activity)
	if err != nil {
		return err
	}

	if err := poster.Save(*outPath, doc); err != nil {
		return err
	}
	fmt.Printf("Poster written: %s (%d bytes)\n", *outPath, len(doc))
	return nil
}

// loadConfig falls back to defaults when no config file is present, so
// the CLI works standalone.
func loadConfig() *config.Config {
	if _, err := os.Stat(*configPath); err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Warn("Config unreadable, using defaults", "path", *configPath, "error", err)
		return config.DefaultConfig()
	}
	return cfg
}

func loadActivity(path string) (*model.ActivityRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		return gpxio.ParseFile(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read activity: %w", err)
		}
		var activity model.ActivityRecord
		if err := json.Unmarshal(data, &activity); err != nil {
			return nil, fmt.Errorf("parse activity JSON: %w", err)
		}
		return &activity, nil
	default:
		return nil, fmt.Errorf("unsupported input %q: expected .gpx or .json", path)
	}
}

// buildPalette parses "key=#hex" pairs into a validated palette.
func buildPalette(spec string) (*palette.Palette, error) {
	if spec == "" {
		return palette.Default(), nil
	}
	overrides := map[string]string{}
	for _, pair := range strings.Split(spec, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("invalid color override %q: expected key=#hex", pair)
		}
		overrides[key] = value
	}
	return palette.New(overrides)
}
