package geom

import (
	"math"
	"testing"

	"postergo/pkg/model"
)

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name   string
		region model.RegionSize
		srcW   float64
		srcH   float64
	}{
		{"Wide Source Into Square", model.RegionSize{Width: 100, Height: 100}, 200, 100},
		{"Tall Source Into Wide", model.RegionSize{Width: 170, Height: 120}, 50, 400},
		{"Enlargement Allowed", model.RegionSize{Width: 400, Height: 300}, 40, 30},
		{"Source Equals Region", model.RegionSize{Width: 95, Height: 48}, 95, 48},
		{"Tiny Region Hits Floor", model.RegionSize{Width: 12, Height: 4}, 300, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleToFit(tt.region, tt.srcW, tt.srcH)

			wantRatio := tt.srcW / tt.srcH
			gotRatio := got.Width / got.Height
			if math.Abs(gotRatio-wantRatio) > 1e-9*wantRatio {
				t.Errorf("aspect ratio %v, want %v", gotRatio, wantRatio)
			}
			if got.Width < MinDimension-1e-9 && got.Height < MinDimension-1e-9 {
				t.Errorf("both dimensions below floor: %+v", got)
			}
			if math.Min(got.Width, got.Height) < MinDimension-1e-9 {
				t.Errorf("smaller dimension %v below floor", math.Min(got.Width, got.Height))
			}
		})
	}
}

func TestScaleToFitDegenerateSource(t *testing.T) {
	// Zero source height must not panic and is treated as square.
	got := ScaleToFit(model.RegionSize{Width: 80, Height: 40}, 100, 0)
	if got.Width != got.Height {
		t.Errorf("degenerate source should be square, got %+v", got)
	}
	if got.Width != 40 {
		t.Errorf("expected 40x40, got %+v", got)
	}
}

func TestRescale(t *testing.T) {
	if got := Rescale(5, 0, 10, 0, 100); got != 50 {
		t.Errorf("Rescale() = %v, want 50", got)
	}
	if got := Rescale(0, 0, 10, 20, 40); got != 20 {
		t.Errorf("Rescale() = %v, want 20", got)
	}
	// Inverted output range
	if got := Rescale(10, 0, 10, 100, 0); got != 0 {
		t.Errorf("Rescale() inverted = %v, want 0", got)
	}
}

func TestProjectIdempotent(t *testing.T) {
	b := Bounds{MinLat: 48.0, MaxLat: 49.0, MinLon: 2.0, MaxLon: 3.0}

	x1, y1 := Project(48.5, 2.5, b, 170, 120, 10)
	x2, y2 := Project(48.5, 2.5, b, 170, 120, 10)

	if x1 != x2 || y1 != y2 {
		t.Errorf("re-projection differs: (%v,%v) vs (%v,%v)", x1, y1, x2, y2)
	}

	// Midpoint lands in the middle of the margined region.
	if math.Abs(x1-85) > 1e-9 || math.Abs(y1-60) > 1e-9 {
		t.Errorf("midpoint projected to (%v,%v), want (85,60)", x1, y1)
	}
}

func TestProjectNorthUp(t *testing.T) {
	b := Bounds{MinLat: 48.0, MaxLat: 49.0, MinLon: 2.0, MaxLon: 3.0}

	_, yNorth := Project(49.0, 2.5, b, 170, 120, 10)
	_, ySouth := Project(48.0, 2.5, b, 170, 120, 10)

	if yNorth >= ySouth {
		t.Errorf("north point should be above south: yNorth=%v ySouth=%v", yNorth, ySouth)
	}
}

func TestProjectZeroRange(t *testing.T) {
	coords := []model.Coordinate{{Lat: 48.85, Lon: 2.35}}
	b := BoundsOf(coords)

	x, y := Project(48.85, 2.35, b, 170, 120, 10)
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		t.Fatalf("zero-range projection not finite: (%v,%v)", x, y)
	}
	if x < 10 || x > 160 || y < 10 || y > 110 {
		t.Errorf("zero-range projection out of bounds: (%v,%v)", x, y)
	}
}

func TestBoundsOf(t *testing.T) {
	coords := []model.Coordinate{
		{Lat: 48.1, Lon: 2.9},
		{Lat: 48.9, Lon: 2.1},
		{Lat: 48.5, Lon: 2.5},
	}
	b := BoundsOf(coords)

	if b.MinLat != 48.1 || b.MaxLat != 48.9 || b.MinLon != 2.1 || b.MaxLon != 2.9 {
		t.Errorf("unexpected bounds: %+v", b)
	}
}

func TestFlatDistance(t *testing.T) {
	a := model.Coordinate{Lat: 48.0, Lon: 2.0}
	b := model.Coordinate{Lat: 48.0, Lon: 2.001}

	got := FlatDistance(a, b)
	want := 111.0
	if math.Abs(got-want) > 0.5 {
		t.Errorf("FlatDistance() = %v, want ~%v", got, want)
	}
}

func TestDistance(t *testing.T) {
	// London to Paris, ~344km
	got := Distance(
		model.Coordinate{Lat: 51.5074, Lon: -0.1278},
		model.Coordinate{Lat: 48.8566, Lon: 2.3522},
	)
	if math.Abs(got-344000) > 344000*0.01 {
		t.Errorf("Distance() = %v, want ~344000", got)
	}
}

func TestSimplify(t *testing.T) {
	// Collinear middle points collapse; endpoints survive.
	coords := []model.Coordinate{
		{Lat: 48.0, Lon: 2.0},
		{Lat: 48.0000001, Lon: 2.1},
		{Lat: 48.0, Lon: 2.2},
		{Lat: 48.5, Lon: 2.2},
	}
	got := Simplify(coords, 0.001)
	if len(got) >= len(coords) {
		t.Errorf("expected reduction, got %d of %d points", len(got), len(coords))
	}
	if got[0] != coords[0] || got[len(got)-1] != coords[len(coords)-1] {
		t.Errorf("endpoints not preserved")
	}

	// Zero tolerance is a no-op.
	if n := len(Simplify(coords, 0)); n != len(coords) {
		t.Errorf("zero tolerance changed point count: %d", n)
	}
}
