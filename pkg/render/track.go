package render

import (
	"context"
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"postergo/pkg/geom"
	"postergo/pkg/model"
)

// noGPSData is the localized placeholder shown when a track cannot be drawn.
const noGPSData = "Pas de données GPS"

// RenderMap draws the GPS track as a vector path with start and end
// markers. Fewer than two points yields the "no data" text instead of a
// path. Stroke width, marker radius, and the margin all scale with the
// region so the panel reads the same at any size.
func (c *Charts) RenderMap(_ context.Context, coords []model.Coordinate, region model.RegionSize) string {
	region = regionOr(region, 170, 120)

	if len(coords) < 2 {
		return noData(region, noGPSData)
	}

	if c.cfg.TrackSimplifyDeg > 0 {
		coords = geom.Simplify(coords, c.cfg.TrackSimplifyDeg)
	}

	w, h := region.Width, region.Height
	minDim := math.Min(w, h)
	margin := c.cfg.MapMarginFrac * minDim
	bounds := geom.BoundsOf(coords)

	pts := make([][2]float64, len(coords))
	for i, coord := range coords {
		x, y := geom.Project(coord.Lat, coord.Lon, bounds, w, h, margin)
		pts[i] = [2]float64{x, y}
	}

	return fragment(func(canvas *svg.SVG) {
		canvas.Gid("gps-track")
		c.drawTrack(canvas, pts, minDim)
		canvas.Gend()
	})
}

// drawTrack emits the track path and start/end markers for points already
// projected into region space. Callers wrap it in their own group.
func (c *Charts) drawTrack(canvas *svg.SVG, pts [][2]float64, minDim float64) {
	var path strings.Builder
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(&path, "M %.2f,%.2f", p[0], p[1])
		} else {
			fmt.Fprintf(&path, " L %.2f,%.2f", p[0], p[1])
		}
	}

	radius := 0.0167 * minDim
	start, end := pts[0], pts[len(pts)-1]

	canvas.Path(path.String(),
		fmt.Sprintf(`stroke="%s"`, c.pal.Map()),
		fmt.Sprintf(`stroke-width="%.2f"`, 0.0125*minDim),
		`fill="none"`,
		`stroke-linecap="round"`,
		`stroke-linejoin="round"`,
		`opacity="0.9"`)
	canvas.Circle(start[0], start[1], radius,
		fmt.Sprintf(`fill="%s"`, c.pal.StartPoint()),
		`stroke="white"`,
		fmt.Sprintf(`stroke-width="%.2f"`, 0.0042*minDim))
	canvas.Circle(end[0], end[1], radius,
		fmt.Sprintf(`fill="%s"`, c.pal.EndPoint()),
		`stroke="white"`,
		fmt.Sprintf(`stroke-width="%.2f"`, 0.0042*minDim))
}
