// Package tiles fetches web-mercator map tiles and composites them into a
// single raster background for the tile-backed track renderer. Fetching is
// concurrent with a per-tile timeout; individual failures leave a gap in
// the composite instead of failing the poster.
package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // tile decoding
	_ "image/png"  // tile decoding
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"postergo/pkg/config"
	"postergo/pkg/geom"
)

// tileSize is the pixel edge of a standard web-mercator tile.
const tileSize = 256

// fetchConcurrency bounds parallel tile downloads per composite.
const fetchConcurrency = 4

// Fetcher retrieves one tile image. Satisfied by request.Client.
type Fetcher interface {
	GetWithHeaders(ctx context.Context, url string, headers map[string]string, cacheKey string) ([]byte, error)
}

// Background is a composited tile image plus the projection that maps
// coordinates onto its pixels.
type Background struct {
	PNG    []byte
	Width  int
	Height int

	zoom       maptile.Zoom
	minX, minY uint32
}

// Project returns the pixel position of a coordinate within the image.
func (b *Background) Project(lat, lon float64) (x, y float64) {
	f := maptile.Fraction(orb.Point{lon, lat}, b.zoom)
	return (f[0] - float64(b.minX)) * tileSize, (f[1] - float64(b.minY)) * tileSize
}

// Compositor builds tile backgrounds within a tile budget.
type Compositor struct {
	cfg     config.TilesConfig
	fetcher Fetcher
}

// New returns a Compositor.
func New(cfg config.TilesConfig, f Fetcher) *Compositor {
	return &Compositor{cfg: cfg, fetcher: f}
}

// grid is the tile range covering a bounding box at one zoom level.
type grid struct {
	zoom       maptile.Zoom
	minX, minY uint32
	nx, ny     uint32
}

func gridFor(bounds geom.Bounds, zoom maptile.Zoom) grid {
	topLeft := maptile.At(orb.Point{bounds.MinLon, bounds.MaxLat}, zoom)
	bottomRight := maptile.At(orb.Point{bounds.MaxLon, bounds.MinLat}, zoom)
	return grid{
		zoom: zoom,
		minX: topLeft.X,
		minY: topLeft.Y,
		nx:   bottomRight.X - topLeft.X + 1,
		ny:   bottomRight.Y - topLeft.Y + 1,
	}
}

// gridWithinBudget walks the zoom down until the covering grid fits the
// tile budget.
func (c *Compositor) gridWithinBudget(bounds geom.Bounds) grid {
	budget := uint64(c.cfg.MaxTiles)
	if budget == 0 {
		budget = 1
	}

	g := gridFor(bounds, maptile.Zoom(c.cfg.MaxZoom))
	for g.zoom > 0 && uint64(g.nx)*uint64(g.ny) > budget {
		g = gridFor(bounds, g.zoom-1)
	}
	return g
}

func (c *Compositor) tileURL(g grid, x, y uint32) string {
	u := strings.Replace(c.cfg.URL, "{z}", strconv.Itoa(int(g.zoom)), 1)
	u = strings.Replace(u, "{x}", strconv.FormatUint(uint64(x), 10), 1)
	return strings.Replace(u, "{y}", strconv.FormatUint(uint64(y), 10), 1)
}

// Background fetches and composites the tiles covering bounds. It returns
// an error only when every single tile failed; partial composites carry
// gaps where fetches failed or timed out.
func (c *Compositor) Background(ctx context.Context, bounds geom.Bounds) (*Background, error) {
	g := c.gridWithinBudget(bounds)

	type fetched struct {
		img    image.Image
		px, py int
	}

	var (
		mu      sync.Mutex
		images  []fetched
		wg      sync.WaitGroup
		sem     = make(chan struct{}, fetchConcurrency)
		headers map[string]string
	)
	if c.cfg.UserAgent != "" {
		headers = map[string]string{"User-Agent": c.cfg.UserAgent}
	}

	for x := g.minX; x < g.minX+g.nx; x++ {
		for y := g.minY; y < g.minY+g.ny; y++ {
			wg.Add(1)
			go func(x, y uint32) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				tileCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.Timeout))
				defer cancel()

				cacheKey := fmt.Sprintf("tile/%d/%d/%d", g.zoom, x, y)
				body, err := c.fetcher.GetWithHeaders(tileCtx, c.tileURL(g, x, y), headers, cacheKey)
				if err != nil {
					slog.Warn("tile fetch failed, leaving gap", "zoom", g.zoom, "x", x, "y", y, "error", err)
					return
				}

				img, _, err := image.Decode(bytes.NewReader(body))
				if err != nil {
					slog.Warn("tile decode failed, leaving gap", "zoom", g.zoom, "x", x, "y", y, "error", err)
					return
				}

				mu.Lock()
				images = append(images, fetched{
					img: img,
					px:  int(x-g.minX) * tileSize,
					py:  int(y-g.minY) * tileSize,
				})
				mu.Unlock()
			}(x, y)
		}
	}
	wg.Wait()

	if len(images) == 0 {
		return nil, fmt.Errorf("all %d tile fetches failed", g.nx*g.ny)
	}

	width := int(g.nx) * tileSize
	height := int(g.ny) * tileSize
	dc := gg.NewContext(width, height)
	for _, f := range images {
		dc.DrawImage(f.img, f.px, f.py)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}

	return &Background{
		PNG:    buf.Bytes(),
		Width:  width,
		Height: height,
		zoom:   g.zoom,
		minX:   g.minX,
		minY:   g.minY,
	}, nil
}
