package layout

import (
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"postergo/pkg/config"
	"postergo/pkg/model"
)

// Scan order: the track placeholder's window is wide enough to reach the
// histogram's rectangle, so the histogram must claim its rectangle first.
var scanOrder = []string{
	config.PlaceholderHistogram,
	config.PlaceholderTrack,
	config.PlaceholderElevation,
}

var (
	rectTagRe   = regexp.MustCompile(`<rect\b[^>]*?/?>`)
	groupTagRe  = regexp.MustCompile(`<g\b[^>]*?>`)
	translateRe = regexp.MustCompile(`translate\(\s*(-?[0-9.]+)\s*[,\s]\s*(-?[0-9.]+)\s*\)`)
	xAttrRe     = regexp.MustCompile(`\bx="(-?[0-9.]+)"`)
	yAttrRe     = regexp.MustCompile(`\by="(-?[0-9.]+)"`)
	widthRe     = regexp.MustCompile(`\bwidth="(-?[0-9.]+)"`)
	heightRe    = regexp.MustCompile(`\bheight="(-?[0-9.]+)"`)
)

// rectCandidate is a rectangle primitive found in the template text.
type rectCandidate struct {
	x, y, w, h float64
	raw        string
	pos        int
}

// Scanner infers a RegionSize per placeholder from the template text.
// Everything here is best effort; Scan never fails, it degrades to the
// configured default sizes.
type Scanner struct {
	cfg config.ScannerConfig
}

// NewScanner returns a scanner with the given tuning.
func NewScanner(cfg config.ScannerConfig) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan resolves a region size for every placeholder the configuration
// knows about. A placeholder that cannot be resolved, and the whole map on
// any internal panic, falls back to the configured defaults.
func (s *Scanner) Scan(template string) (regions map[string]model.RegionSize) {
	regions = s.defaultRegions()

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("template layout scan failed, using default regions", "panic", r)
			regions = s.defaultRegions()
		}
	}()

	claimed := map[string]bool{}

	for _, name := range scanOrder {
		marker := "{{" + name + "}}"
		markerPos := strings.Index(template, marker)
		if markerPos < 0 {
			continue
		}

		if rect, ok := s.structural(template, markerPos, claimed); ok {
			claimed[rect.raw] = true
			regions[name] = model.RegionSize{Width: rect.w, Height: rect.h}
			continue
		}

		window := s.window(template, name, markerPos)
		if rect, ok := s.proximity(window, name, claimed); ok {
			claimed[rect.raw] = true
			regions[name] = model.RegionSize{Width: rect.w, Height: rect.h}
			continue
		}

		if size, ok := bareDimensions(window, claimed); ok {
			regions[name] = size
			continue
		}

		slog.Debug("placeholder region not found in template, using default",
			"placeholder", name, "region", regions[name])
	}

	return regions
}

func (s *Scanner) defaultRegions() map[string]model.RegionSize {
	out := make(map[string]model.RegionSize, len(s.cfg.Defaults))
	for name, spec := range s.cfg.Defaults {
		out[name] = model.RegionSize{Width: spec.Width, Height: spec.Height}
	}
	return out
}

func (s *Scanner) window(template, name string, markerPos int) string {
	size := s.cfg.DefaultWindow
	if name == config.PlaceholderTrack {
		size = s.cfg.MapWindow
	}
	start := max(0, markerPos-size)
	return template[start:markerPos]
}

// structural looks for a translated group wrapping the marker and binds
// the placeholder to the rectangle whose corner sits closest (Manhattan
// distance) to the group's translation offset.
func (s *Scanner) structural(template string, markerPos int, claimed map[string]bool) (rectCandidate, bool) {
	group, ok := enclosingTranslatedGroup(template, markerPos)
	if !ok {
		return rectCandidate{}, false
	}

	best := rectCandidate{}
	bestDist := math.Inf(1)
	for _, rect := range findRects(template[:group.pos]) {
		if claimed[rect.raw] {
			continue
		}
		dist := math.Abs(rect.x-group.tx) + math.Abs(rect.y-group.ty)
		if dist < bestDist {
			bestDist = dist
			best = rect
		}
	}

	if math.IsInf(bestDist, 1) {
		return rectCandidate{}, false
	}
	return best, true
}

// proximity picks a rectangle from the bounded window before the marker.
// The map placeholder prefers the largest candidate, everything else the
// last one.
func (s *Scanner) proximity(window, name string, claimed map[string]bool) (rectCandidate, bool) {
	var candidates []rectCandidate
	for _, rect := range findRects(window) {
		if !claimed[rect.raw] {
			candidates = append(candidates, rect)
		}
	}
	if len(candidates) == 0 {
		return rectCandidate{}, false
	}

	if name == config.PlaceholderTrack {
		best := candidates[0]
		for _, rect := range candidates[1:] {
			if rect.w*rect.h > best.w*best.h {
				best = rect
			}
		}
		return best, true
	}

	return candidates[len(candidates)-1], true
}

// bareDimensions is the last-ditch pass: any width= and height= attribute
// pair in the window, rectangles or not. Claimed rectangle markup is
// removed first so a dedup never gets undone here.
func bareDimensions(window string, claimed map[string]bool) (model.RegionSize, bool) {
	for raw := range claimed {
		window = strings.ReplaceAll(window, raw, "")
	}
	widths := widthRe.FindAllStringSubmatch(window, -1)
	heights := heightRe.FindAllStringSubmatch(window, -1)
	if len(widths) == 0 || len(heights) == 0 {
		return model.RegionSize{}, false
	}

	w := parseFloat(widths[len(widths)-1][1])
	h := parseFloat(heights[len(heights)-1][1])
	if w <= 0 || h <= 0 {
		return model.RegionSize{}, false
	}
	return model.RegionSize{Width: w, Height: h}, true
}

// translatedGroup is an open <g> tag carrying a translate() transform.
type translatedGroup struct {
	pos    int
	tx, ty float64
}

// enclosingTranslatedGroup finds the nearest translated group opened
// before markerPos that is still open at markerPos.
func enclosingTranslatedGroup(template string, markerPos int) (translatedGroup, bool) {
	before := template[:markerPos]
	matches := groupTagRe.FindAllStringIndex(before, -1)

	for i := len(matches) - 1; i >= 0; i-- {
		tag := before[matches[i][0]:matches[i][1]]
		tr := translateRe.FindStringSubmatch(tag)
		if tr == nil {
			continue
		}

		// Closed again before the marker means it does not wrap it.
		between := before[matches[i][1]:]
		opens := strings.Count(between, "<g")
		closes := strings.Count(between, "</g>")
		if closes > opens {
			continue
		}

		return translatedGroup{
			pos: matches[i][0],
			tx:  parseFloat(tr[1]),
			ty:  parseFloat(tr[2]),
		}, true
	}

	return translatedGroup{}, false
}

func findRects(text string) []rectCandidate {
	var out []rectCandidate
	for _, loc := range rectTagRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]

		w := widthRe.FindStringSubmatch(raw)
		h := heightRe.FindStringSubmatch(raw)
		if w == nil || h == nil {
			continue
		}

		rect := rectCandidate{
			w:   parseFloat(w[1]),
			h:   parseFloat(h[1]),
			raw: raw,
			pos: loc[0],
		}
		if rect.w <= 0 || rect.h <= 0 {
			continue
		}

		if x := xAttrRe.FindStringSubmatch(raw); x != nil {
			rect.x = parseFloat(x[1])
		}
		if y := yAttrRe.FindStringSubmatch(raw); y != nil {
			rect.y = parseFloat(y[1])
		}

		out = append(out, rect)
	}
	return out
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
