// Package palette manages the color set applied to a generated poster.
// Callers may override any subset of the defaults; everything downstream
// reads colors exclusively through a Palette.
package palette

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// Color keys accepted in override maps.
const (
	KeyBackground = "background"
	KeyPrimary    = "primary"
	KeySecondary  = "secondary"
	KeyThird      = "third"
	KeyFourth     = "fourth"
	KeyStartPoint = "start_point"
	KeyEndPoint   = "end_point"
	KeyGraph      = "graph_color"
	KeyMap        = "map_color"
)

var hexColorRe = regexp.MustCompile(`^#([A-Fa-f0-9]{3}|[A-Fa-f0-9]{6})$`)

var defaults = map[string]string{
	KeyBackground: "#F8F8F8",
	KeyPrimary:    "#FC4C02",
	KeySecondary:  "#E74C3C",
	KeyThird:      "#3498DB",
	KeyFourth:     "#34495E",
	KeyStartPoint: "#22C55E",
	KeyEndPoint:   "#EF4444",
	KeyGraph:      "#FC4C02",
	KeyMap:        "#FC4C02",
}

// Palette resolves color keys to #RRGGBB values, falling back to the
// defaults for any key without an override.
type Palette struct {
	custom map[string]string
}

// Default returns a palette with no overrides.
func Default() *Palette {
	return &Palette{custom: map[string]string{}}
}

// New builds a palette from the given overrides. Unknown keys are logged
// and ignored; a value that is not a #RGB or #RRGGBB hex color is an
// error. Overrides are normalized to uppercase #RRGGBB before storage.
func New(overrides map[string]string) (*Palette, error) {
	p := Default()
	if err := p.Update(overrides); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies additional overrides on top of the existing ones.
func (p *Palette) Update(overrides map[string]string) error {
	for key, color := range overrides {
		if _, known := defaults[key]; !known {
			slog.Warn("ignoring unknown color key", "key", key)
			continue
		}
		if !hexColorRe.MatchString(color) {
			return fmt.Errorf("invalid color for %s: %q (want #RRGGBB or #RGB)", key, color)
		}
		p.custom[key] = NormalizeHex(color)
	}
	return nil
}

// NormalizeHex expands #RGB to #RRGGBB and uppercases. The input must
// already match the hex color pattern.
func NormalizeHex(color string) string {
	if len(color) == 4 {
		r, g, b := color[1:2], color[2:3], color[3:4]
		color = "#" + r + r + g + g + b + b
	}
	return strings.ToUpper(color)
}

// Color returns the value for key, or the empty string for an unknown key.
func (p *Palette) Color(key string) string {
	if c, ok := p.custom[key]; ok {
		return c
	}
	return defaults[key]
}

func (p *Palette) Background() string { return p.Color(KeyBackground) }
func (p *Palette) Primary() string    { return p.Color(KeyPrimary) }
func (p *Palette) Secondary() string  { return p.Color(KeySecondary) }
func (p *Palette) Third() string      { return p.Color(KeyThird) }
func (p *Palette) Fourth() string     { return p.Color(KeyFourth) }
func (p *Palette) StartPoint() string { return p.Color(KeyStartPoint) }
func (p *Palette) EndPoint() string   { return p.Color(KeyEndPoint) }
func (p *Palette) Graph() string      { return p.Color(KeyGraph) }
func (p *Palette) Map() string        { return p.Color(KeyMap) }

// Stroke is the border color, a darkened shade of the primary color.
func (p *Palette) Stroke() string {
	return Darken(p.Primary(), 0.2)
}

// Darken scales each RGB channel of a #RRGGBB color by (1 - factor).
// A color that cannot be parsed is returned unchanged.
func Darken(hexColor string, factor float64) string {
	raw := strings.TrimPrefix(hexColor, "#")
	if len(raw) != 6 {
		slog.Warn("cannot darken color", "color", hexColor)
		return hexColor
	}

	channels := make([]int, 3)
	for i := range 3 {
		v, err := strconv.ParseInt(raw[i*2:i*2+2], 16, 0)
		if err != nil {
			slog.Warn("cannot darken color", "color", hexColor, "error", err)
			return hexColor
		}
		channels[i] = max(0, int(float64(v)*(1-factor)))
	}

	return fmt.Sprintf("#%02X%02X%02X", channels[0], channels[1], channels[2])
}

// HasCustom reports whether any override is in effect.
func (p *Palette) HasCustom() bool {
	return len(p.custom) > 0
}

// All returns the effective color for every known key.
func (p *Palette) All() map[string]string {
	out := make(map[string]string, len(defaults))
	for key := range defaults {
		out[key] = p.Color(key)
	}
	return out
}

// TemplatePlaceholders returns the COLOR_* substitution map consumed by
// the template composer.
func (p *Palette) TemplatePlaceholders() map[string]string {
	return map[string]string{
		"COLOR_BACKGROUND": p.Background(),
		"COLOR_PRIMARY":    p.Primary(),
		"COLOR_SECONDARY":  p.Secondary(),
		"COLOR_THIRD":      p.Third(),
		"COLOR_FOURTH":     p.Fourth(),
		"COLOR_START":      p.StartPoint(),
		"COLOR_END":        p.EndPoint(),
		"COLOR_STROKE":     p.Stroke(),
		"COLOR_GRAPH":      p.Graph(),
		"COLOR_MAP":        p.Map(),
	}
}
