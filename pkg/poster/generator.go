// Package poster orchestrates a generation run: scan the template for
// placeholder regions, render the three visual fragments, merge in the
// formatted stats and palette colors, and compose the final document.
package poster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"postergo/pkg/config"
	"postergo/pkg/format"
	"postergo/pkg/layout"
	"postergo/pkg/model"
	"postergo/pkg/palette"
	"postergo/pkg/render"
	"postergo/pkg/store"
	"postergo/pkg/tracker"
)

// LastPosterKey is the persistent state key holding the UUID of the most
// recently archived poster.
const LastPosterKey = "poster/last_uuid"

// Generator wires the template, scanner, renderers, and palette together.
// The store, state, and tracker are optional; without a store Archive is
// unavailable, without a tracker counters are simply not kept.
type Generator struct {
	templates *layout.Manager
	scanner   *layout.Scanner
	charts    *render.Charts
	mapRender render.MapRenderer
	pal       *palette.Palette
	store     store.PosterStore
	state     store.StateStore
	tracker   *tracker.Tracker
}

// NewGenerator returns a Generator. mapRender may be the plain vector
// renderer or the tile-backed one.
func NewGenerator(
	templates *layout.Manager,
	scanner *layout.Scanner,
	charts *render.Charts,
	mapRender render.MapRenderer,
	pal *palette.Palette,
	st store.PosterStore,
	state store.StateStore,
	tr *tracker.Tracker,
) *Generator {
	return &Generator{
		templates: templates,
		scanner:   scanner,
		charts:    charts,
		mapRender: mapRender,
		pal:       pal,
		store:     st,
		state:     state,
		tracker:   tr,
	}
}

// safeRender isolates one renderer. A panic inside a renderer costs that
// fragment, never the poster.
func (g *Generator) safeRender(name string, renderFn func() string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("renderer panicked, dropping fragment", "renderer", name, "panic", r)
			if g.tracker != nil {
				g.tracker.TrackRendererFailure()
			}
			out = ""
		}
	}()
	return renderFn()
}

// Generate produces the finished SVG document for an activity.
func (g *Generator) Generate(ctx context.Context, activity *model.ActivityRecord) (string, error) {
	if activity == nil {
		return "", fmt.Errorf("no activity to render")
	}

	regions := g.scanner.Scan(g.templates.Content())

	replacements := format.PosterReplacements(activity)
	for key, color := range g.pal.TemplatePlaceholders() {
		replacements[key] = color
	}
	replacements[config.PlaceholderHistogram] = g.safeRender("histogram", func() string {
		return g.charts.Histogram(activity.KmSplits, regions[config.PlaceholderHistogram])
	})
	replacements[config.PlaceholderTrack] = g.safeRender("track", func() string {
		return g.mapRender.RenderMap(ctx, activity.Coordinates, regions[config.PlaceholderTrack])
	})
	replacements[config.PlaceholderElevation] = g.safeRender("elevation", func() string {
		return g.charts.Elevation(activity.Coordinates, regions[config.PlaceholderElevation])
	})

	doc := g.templates.ComposePoster(replacements)
	if g.tracker != nil {
		g.tracker.TrackPosterGenerated()
	}
	slog.Info("poster generated",
		"activity", activity.Name,
		"type", activity.Type,
		"points", len(activity.Coordinates),
		"splits", len(activity.KmSplits))
	return doc, nil
}

// Archive stores the finished poster and returns its record.
func (g *Generator) Archive(ctx context.Context, activity *model.ActivityRecord, doc string) (*model.PosterRecord, error) {
	if g.store == nil {
		return nil, fmt.Errorf("no poster store configured")
	}

	record := &model.PosterRecord{
		UUID:          uuid.NewString(),
		ActivityID:    strconv.FormatInt(activity.ID, 10),
		Name:          activity.Name,
		ActivityType:  activity.Type,
		Distance:      activity.Distance,
		MovingTime:    activity.MovingTime,
		ElevationGain: activity.ElevationGain,
		StartDate:     activity.StartDate,
		SVG:           doc,
		CreatedAt:     time.Now().UTC(),
	}
	if err := g.store.SavePoster(ctx, record); err != nil {
		return nil, fmt.Errorf("archive poster: %w", err)
	}
	if g.state != nil {
		if err := g.state.SetState(ctx, LastPosterKey, record.UUID); err != nil {
			slog.Warn("failed to record latest poster", "uuid", record.UUID, "error", err)
		}
	}
	return record, nil
}

// Save writes the document to disk, creating parent directories.
func Save(path, doc string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write poster: %w", err)
	}
	return nil
}
