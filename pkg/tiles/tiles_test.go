package tiles

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postergo/pkg/config"
	"postergo/pkg/geom"
)

type fakeFetcher struct {
	mu   sync.Mutex
	urls []string
	keys []string
	fail func(url string) bool
	body []byte
}

func (f *fakeFetcher) GetWithHeaders(_ context.Context, url string, _ map[string]string, cacheKey string) ([]byte, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.keys = append(f.keys, cacheKey)
	f.mu.Unlock()
	if f.fail != nil && f.fail(url) {
		return nil, errors.New("upstream unavailable")
	}
	return f.body, nil
}

func tilePNG(t *testing.T) []byte {
	t.Helper()
	dc := gg.NewContext(tileSize, tileSize)
	dc.SetRGB(0.9, 0.9, 0.85)
	dc.Clear()
	var buf bytes.Buffer
	require.NoError(t, dc.EncodePNG(&buf))
	return buf.Bytes()
}

func testTilesConfig() config.TilesConfig {
	cfg := config.DefaultConfig().Tiles
	cfg.URL = "https://tiles.example/{z}/{x}/{y}.png"
	cfg.Timeout = config.Duration(time.Second)
	return cfg
}

func TestGridWithinBudget(t *testing.T) {
	c := New(testTilesConfig(), nil)

	// A city-scale route spans far more than 16 tiles at zoom 17, so the
	// zoom has to walk down until the grid fits.
	bounds := geom.Bounds{MinLat: 48.80, MaxLat: 48.90, MinLon: 2.25, MaxLon: 2.42}
	g := c.gridWithinBudget(bounds)

	assert.LessOrEqual(t, g.nx*g.ny, uint32(16))
	assert.Less(t, int(g.zoom), 17)
	assert.NotZero(t, g.nx)
	assert.NotZero(t, g.ny)
}

func TestGridSinglePointStaysAtMaxZoom(t *testing.T) {
	c := New(testTilesConfig(), nil)

	bounds := geom.Bounds{MinLat: 48.85, MaxLat: 48.85, MinLon: 2.35, MaxLon: 2.35}
	g := c.gridWithinBudget(bounds)

	assert.Equal(t, 17, int(g.zoom))
	assert.Equal(t, uint32(1), g.nx)
	assert.Equal(t, uint32(1), g.ny)
}

func TestTileURL(t *testing.T) {
	c := New(testTilesConfig(), nil)

	g := grid{zoom: 12, minX: 0, minY: 0}
	assert.Equal(t, "https://tiles.example/12/2077/1409.png", c.tileURL(g, 2077, 1409))
}

func TestBackgroundComposites(t *testing.T) {
	fetcher := &fakeFetcher{body: tilePNG(t)}
	c := New(testTilesConfig(), fetcher)

	bounds := geom.Bounds{MinLat: 48.84, MaxLat: 48.87, MinLon: 2.33, MaxLon: 2.37}
	bg, err := c.Background(t.Context(), bounds)
	require.NoError(t, err)

	assert.NotEmpty(t, bg.PNG)
	assert.Equal(t, 0, bg.Width%tileSize)
	assert.Equal(t, 0, bg.Height%tileSize)

	img, format, err := image.Decode(bytes.NewReader(bg.PNG))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, bg.Width, img.Bounds().Dx())
	assert.Equal(t, bg.Height, img.Bounds().Dy())

	assert.Equal(t, bg.Width/tileSize*bg.Height/tileSize, len(fetcher.urls))
	assert.Contains(t, fetcher.keys[0], "tile/")
}

func TestBackgroundSurvivesPartialFailure(t *testing.T) {
	fetcher := &fakeFetcher{body: tilePNG(t)}
	var once sync.Once
	fetcher.fail = func(string) bool {
		failed := false
		once.Do(func() { failed = true })
		return failed
	}
	c := New(testTilesConfig(), fetcher)

	bounds := geom.Bounds{MinLat: 48.84, MaxLat: 48.87, MinLon: 2.33, MaxLon: 2.37}
	bg, err := c.Background(t.Context(), bounds)
	require.NoError(t, err)
	assert.NotEmpty(t, bg.PNG)
}

func TestBackgroundAllFailed(t *testing.T) {
	fetcher := &fakeFetcher{fail: func(string) bool { return true }}
	c := New(testTilesConfig(), fetcher)

	bounds := geom.Bounds{MinLat: 48.85, MaxLat: 48.85, MinLon: 2.35, MaxLon: 2.35}
	_, err := c.Background(t.Context(), bounds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tile fetches failed")
}

func TestBackgroundRejectsGarbageTiles(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte("not an image")}
	c := New(testTilesConfig(), fetcher)

	bounds := geom.Bounds{MinLat: 48.85, MaxLat: 48.85, MinLon: 2.35, MaxLon: 2.35}
	_, err := c.Background(t.Context(), bounds)
	require.Error(t, err)
}

func TestBackgroundProject(t *testing.T) {
	fetcher := &fakeFetcher{body: tilePNG(t)}
	c := New(testTilesConfig(), fetcher)

	bounds := geom.Bounds{MinLat: 48.84, MaxLat: 48.87, MinLon: 2.33, MaxLon: 2.37}
	bg, err := c.Background(t.Context(), bounds)
	require.NoError(t, err)

	x1, y1 := bg.Project(48.84, 2.33)
	x2, y2 := bg.Project(48.87, 2.37)

	// East increases x, north decreases y in web mercator.
	assert.Greater(t, x2, x1)
	assert.Less(t, y2, y1)

	// The route corners land inside the composite.
	for _, v := range []float64{x1, x2} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, float64(bg.Width))
	}
	for _, v := range []float64{y1, y2} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, float64(bg.Height))
	}
}
