package render

import (
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"postergo/pkg/geom"
	"postergo/pkg/model"
)

// Elevation renders the altitude profile as a translucent filled area with
// a separate stroke-only line on top. Points without altitude are skipped;
// fewer than two altitude samples yields an empty fragment.
//
// The X axis is cumulative flat-earth distance, close enough at chart
// scale. A perfectly flat profile draws as a straight line at mid-height
// rather than dividing by a zero elevation range.
func (c *Charts) Elevation(coords []model.Coordinate, region model.RegionSize) string {
	region = regionOr(region, 95, 48)

	var elevations, distances []float64
	total := 0.0
	var prev *model.Coordinate
	for i := range coords {
		coord := coords[i]
		if !coord.HasAltitude {
			continue
		}
		if prev != nil {
			total += geom.FlatDistance(*prev, coord)
		}
		prev = &coord
		elevations = append(elevations, coord.Altitude)
		distances = append(distances, total/1000)
	}
	if len(elevations) < 2 {
		return ""
	}

	w, h := region.Width, region.Height

	minElev, maxElev := elevations[0], elevations[0]
	for _, e := range elevations[1:] {
		minElev = min(minElev, e)
		maxElev = max(maxElev, e)
	}
	elevRange := maxElev - minElev
	maxDist := distances[len(distances)-1]

	var line strings.Builder
	for i := range elevations {
		x := 0.0
		if maxDist > 0 {
			x = distances[i] / maxDist * w
		}
		// Higher altitude plots higher on screen, which is a smaller y.
		y := h / 2
		if elevRange > 0 {
			y = h - (elevations[i]-minElev)/elevRange*h
		}

		if i == 0 {
			fmt.Fprintf(&line, "M %.2f %.2f", x, y)
		} else {
			fmt.Fprintf(&line, " L %.2f %.2f", x, y)
		}
	}
	area := fmt.Sprintf("%s L %.2f %.2f L 0 %.2f Z", line.String(), w, h, h)

	color := c.pal.Graph()
	return fragment(func(canvas *svg.SVG) {
		canvas.Gid("elevation-profile")
		canvas.Path(area,
			fmt.Sprintf(`fill="%s"`, color),
			`fill-opacity="0.3"`,
			fmt.Sprintf(`stroke="%s"`, color),
			fmt.Sprintf(`stroke-width="%.2f"`, 0.0208*h))
		canvas.Path(line.String(),
			`fill="none"`,
			fmt.Sprintf(`stroke="%s"`, color),
			fmt.Sprintf(`stroke-width="%.2f"`, 0.0313*h))
		canvas.Gend()
	})
}
