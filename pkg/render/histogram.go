package render

import (
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo/float"

	"postergo/pkg/format"
	"postergo/pkg/geom"
	"postergo/pkg/model"
	"postergo/pkg/palette"
)

// tickStepSec is the pace granularity of the histogram's Y axis. Runners
// think in 10-second steps, not round numbers.
const tickStepSec = 10

// Histogram renders the per-kilometer pace bars. Splits with a pace of
// zero or beyond the configured ceiling are sentinels and get dropped; if
// nothing survives the filter, the fragment is empty.
//
// Faster splits draw taller bars: each pace is inverted against the slowest
// one before normalization, and the normalized heights are floored at a
// fraction of the chart height so near-uniform paces stay visible.
func (c *Charts) Histogram(splits []model.KmSplit, region model.RegionSize) string {
	region = regionOr(region, 95, 48)

	var paces []float64
	for _, split := range splits {
		if split.Pace > 0 && split.Pace < c.cfg.PaceCeilingMin {
			paces = append(paces, split.Pace)
		}
	}
	if len(paces) == 0 {
		return ""
	}

	w, h := region.Width, region.Height

	topPad := 0.10 * h
	labelBand := 0.17 * h
	chartH := h - topPad - labelBand

	axisGutter := 0.12 * w
	rightPad := 0.03 * w
	available := w - axisGutter - rightPad

	minPace, maxPace := paces[0], paces[0]
	for _, p := range paces[1:] {
		minPace = math.Min(minPace, p)
		maxPace = math.Max(maxPace, p)
	}

	// Inversion: the fastest split has the largest inverted value. The +1
	// keeps the slowest split's bar off zero before the floor applies.
	minInv := 1.0
	maxInv := maxPace - minPace + 1
	minBar := c.cfg.MinBarFraction * chartH

	heightFor := func(pace float64) float64 {
		if maxInv == minInv {
			return chartH / 2
		}
		inv := maxPace - pace + 1
		return geom.Rescale(inv, minInv, maxInv, minBar, chartH)
	}

	spacing := 0.005 * w
	totalSpacing := float64(len(paces)-1) * spacing
	barW := (available - totalSpacing) / float64(len(paces))
	barW = math.Min(barW, c.cfg.BarCapFraction*w)

	totalBars := float64(len(paces))*barW + totalSpacing
	startX := axisGutter + (available-totalBars)/2

	barFill := c.pal.Graph()
	barStroke := palette.Darken(barFill, 0.15)
	axisColor := c.pal.Fourth()
	barFont := 0.052 * h
	tickFont := 0.045 * h

	return fragment(func(canvas *svg.SVG) {
		canvas.Group(`id="pace-histogram"`)

		canvas.Line(axisGutter, topPad, axisGutter, topPad+chartH,
			fmt.Sprintf(`stroke="%s"`, axisColor),
			fmt.Sprintf(`stroke-width="%.2f"`, 0.006*w))

		// Ticks span the pace range rounded outward to 10-second bounds.
		tickMin := int(math.Floor(minPace*60/tickStepSec)) * tickStepSec
		tickMax := int(math.Ceil(maxPace*60/tickStepSec)) * tickStepSec
		for t := tickMin; t <= tickMax; t += tickStepSec {
			barH := heightFor(float64(t) / 60)
			y := topPad + chartH - math.Min(math.Max(barH, 0), chartH)

			canvas.Line(axisGutter-0.01*w, y, axisGutter, y,
				fmt.Sprintf(`stroke="%s"`, axisColor),
				fmt.Sprintf(`stroke-width="%.2f"`, 0.004*w))
			canvas.Text(axisGutter-0.02*w, y+tickFont/3,
				fmt.Sprintf("%d:%02d", t/60, t%60),
				`font-family="Arial, sans-serif"`,
				fmt.Sprintf(`font-size="%.2f"`, tickFont),
				fmt.Sprintf(`fill="%s"`, axisColor),
				`text-anchor="end"`)
		}

		labelY := topPad + chartH + 0.6*labelBand
		for i, pace := range paces {
			barH := heightFor(pace)
			x := startX + float64(i)*(barW+spacing)

			canvas.Rect(x, topPad+chartH-barH, barW, barH,
				fmt.Sprintf(`fill="%s"`, barFill),
				fmt.Sprintf(`stroke="%s"`, barStroke),
				fmt.Sprintf(`stroke-width="%.2f"`, 0.002*w),
				`opacity="0.9"`)
			canvas.Text(x+barW/2, labelY, format.Pace(pace),
				`font-family="Arial, sans-serif"`,
				fmt.Sprintf(`font-size="%.2f"`, barFont),
				`font-weight="bold"`,
				fmt.Sprintf(`fill="%s"`, axisColor),
				`text-anchor="middle"`)
		}

		canvas.Gend()
	})
}
