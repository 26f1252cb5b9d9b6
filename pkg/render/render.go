// Package render produces the SVG fragments embedded into the poster
// template: the pace histogram, the GPS track panel, and the elevation
// profile. Every fragment is sized to the region the layout scanner found
// for it, so the same chart stays legible in a thumbnail or a full panel.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"postergo/pkg/config"
	"postergo/pkg/model"
	"postergo/pkg/palette"
)

// MapRenderer renders the GPS track panel. The tile-backed variant does
// network I/O, hence the context; the vector variant ignores it.
type MapRenderer interface {
	RenderMap(ctx context.Context, coords []model.Coordinate, region model.RegionSize) string
}

// Charts renders all vector chart fragments for one palette and tuning.
// Instances are stateless after construction and safe for concurrent use.
type Charts struct {
	cfg config.RendererConfig
	pal *palette.Palette
}

// New returns a Charts renderer.
func New(cfg config.RendererConfig, pal *palette.Palette) *Charts {
	return &Charts{cfg: cfg, pal: pal}
}

// fragment collects svgo output into a string, without the <svg> wrapper a
// full canvas would carry.
func fragment(draw func(canvas *svg.SVG)) string {
	var buf bytes.Buffer
	draw(svg.New(&buf))
	return strings.TrimSpace(buf.String())
}

// noData renders the localized placeholder text centered in the region.
func noData(region model.RegionSize, msg string) string {
	fontSize := 0.025 * region.Height
	return fragment(func(canvas *svg.SVG) {
		canvas.Text(region.Width/2, region.Height/2, msg,
			`font-family="Arial, sans-serif"`,
			fmt.Sprintf(`font-size="%.2f"`, fontSize),
			`fill="#999999"`,
			`text-anchor="middle"`)
	})
}

// regionOr substitutes a default size when the scanner produced nothing.
func regionOr(region model.RegionSize, w, h float64) model.RegionSize {
	if region.IsZero() {
		return model.RegionSize{Width: w, Height: h}
	}
	return region
}
