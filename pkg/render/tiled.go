package render

import (
	"context"
	"encoding/base64"
	"log/slog"
	"math"

	svg "github.com/ajstarks/svgo/float"

	"postergo/pkg/geom"
	"postergo/pkg/model"
	"postergo/pkg/tiles"
)

// TileCompositor supplies raster backgrounds for the tiled map renderer.
type TileCompositor interface {
	Background(ctx context.Context, bounds geom.Bounds) (*tiles.Background, error)
}

// TiledMap renders the track over a composited map-tile background. When
// the background cannot be built at all it falls back to the plain vector
// track, so a tile outage never loses the poster.
type TiledMap struct {
	charts *Charts
	comp   TileCompositor
}

// NewTiledMap returns a MapRenderer backed by tile imagery.
func NewTiledMap(charts *Charts, comp TileCompositor) *TiledMap {
	return &TiledMap{charts: charts, comp: comp}
}

// RenderMap implements MapRenderer.
func (t *TiledMap) RenderMap(ctx context.Context, coords []model.Coordinate, region model.RegionSize) string {
	region = regionOr(region, 170, 120)

	if len(coords) < 2 {
		return t.charts.RenderMap(ctx, coords, region)
	}

	if t.charts.cfg.TrackSimplifyDeg > 0 {
		coords = geom.Simplify(coords, t.charts.cfg.TrackSimplifyDeg)
	}

	bg, err := t.comp.Background(ctx, geom.BoundsOf(coords))
	if err != nil {
		slog.Warn("tile background unavailable, falling back to vector track", "error", err)
		return t.charts.RenderMap(ctx, coords, region)
	}

	// Contain-fit the composite into the region so the mercator aspect
	// survives, then carry the track through the same transform.
	fit := geom.ScaleToFit(region, float64(bg.Width), float64(bg.Height))
	scale := fit.Width / float64(bg.Width)
	offsetX := (region.Width - fit.Width) / 2
	offsetY := (region.Height - fit.Height) / 2

	pts := make([][2]float64, len(coords))
	for i, coord := range coords {
		px, py := bg.Project(coord.Lat, coord.Lon)
		pts[i] = [2]float64{px*scale + offsetX, py*scale + offsetY}
	}

	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(bg.PNG)
	minDim := math.Min(region.Width, region.Height)

	return fragment(func(canvas *svg.SVG) {
		canvas.Gid("gps-track")
		canvas.Image(offsetX, offsetY, int(fit.Width), int(fit.Height), href)
		t.charts.drawTrack(canvas, pts, minDim)
		canvas.Gend()
	})
}
