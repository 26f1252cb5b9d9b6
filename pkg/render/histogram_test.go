package render

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postergo/pkg/config"
	"postergo/pkg/model"
	"postergo/pkg/palette"
)

func testCharts() *Charts {
	return New(config.DefaultConfig().Renderer, palette.Default())
}

var rectHeightRe = regexp.MustCompile(`<rect[^>]*\bheight="([0-9.]+)"`)

func barHeights(t *testing.T, fragment string) []float64 {
	t.Helper()
	var heights []float64
	for _, m := range rectHeightRe.FindAllStringSubmatch(fragment, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		heights = append(heights, v)
	}
	return heights
}

func splits(paces ...float64) []model.KmSplit {
	out := make([]model.KmSplit, len(paces))
	for i, p := range paces {
		out[i] = model.KmSplit{Km: i + 1, Pace: p}
	}
	return out
}

func TestHistogramFastestSplitIsTallest(t *testing.T) {
	out := testCharts().Histogram(splits(6.0, 5.0, 7.0), model.RegionSize{Width: 95, Height: 48})

	heights := barHeights(t, out)
	require.Len(t, heights, 3)
	assert.Greater(t, heights[1], heights[0], "5:00 split must outgrow 6:00")
	assert.Greater(t, heights[1], heights[2], "5:00 split must outgrow 7:00")
}

func TestHistogramTicksRoundOutward(t *testing.T) {
	out := testCharts().Histogram(splits(5.05, 6.95), model.RegionSize{Width: 95, Height: 48})

	assert.Contains(t, out, ">5:00<")
	assert.Contains(t, out, ">7:00<")
	assert.NotContains(t, out, ">4:50<")
	assert.NotContains(t, out, ">7:10<")
}

func TestHistogramFiltersSentinels(t *testing.T) {
	out := testCharts().Histogram(splits(0, -2, 25, 5.5), model.RegionSize{Width: 95, Height: 48})

	heights := barHeights(t, out)
	assert.Len(t, heights, 1)
}

func TestHistogramEmpty(t *testing.T) {
	c := testCharts()

	assert.Empty(t, c.Histogram(nil, model.RegionSize{Width: 95, Height: 48}))
	assert.Empty(t, c.Histogram(splits(0, 21), model.RegionSize{Width: 95, Height: 48}))
}

func TestHistogramUniformPaces(t *testing.T) {
	out := testCharts().Histogram(splits(5.0, 5.0, 5.0), model.RegionSize{Width: 95, Height: 48})

	heights := barHeights(t, out)
	require.Len(t, heights, 3)
	for _, h := range heights {
		assert.InDelta(t, heights[0], h, 1e-9)
		assert.Greater(t, h, 0.0)
	}
}

func TestHistogramMinBarFloor(t *testing.T) {
	region := model.RegionSize{Width: 95, Height: 48}
	cfg := config.DefaultConfig().Renderer
	out := New(cfg, palette.Default()).Histogram(splits(5.0, 5.01, 9.0), region)

	// Chart height is the region minus top pad and label band; even the
	// slowest bar must clear the configured floor.
	chartH := 48.0 - 0.10*48 - 0.17*48
	floor := cfg.MinBarFraction * chartH
	for _, h := range barHeights(t, out) {
		assert.GreaterOrEqual(t, h, floor-1e-9)
	}
}

func TestHistogramBarWidthCap(t *testing.T) {
	region := model.RegionSize{Width: 100, Height: 48}
	out := testCharts().Histogram(splits(5.0), region)

	widthRe := regexp.MustCompile(`<rect[^>]*\bwidth="([0-9.]+)"`)
	m := widthRe.FindStringSubmatch(out)
	require.NotNil(t, m)
	w, err := strconv.ParseFloat(m[1], 64)
	require.NoError(t, err)
	assert.LessOrEqual(t, w, 10.0+1e-9, "single bar must not exceed the width cap")
}

func TestHistogramUsesPaletteGraphColor(t *testing.T) {
	pal, err := palette.New(map[string]string{"graph_color": "#112233"})
	require.NoError(t, err)
	out := New(config.DefaultConfig().Renderer, pal).Histogram(splits(5.0, 6.0), model.RegionSize{Width: 95, Height: 48})

	assert.Contains(t, out, `fill="#112233"`)
	assert.True(t, strings.HasPrefix(out, "<g id=\"pace-histogram\""))
}
