package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"postergo/pkg/model"
)

// MinDimension is the floor for dimensions produced by ScaleToFit, in
// template units. Anything smaller is unreadable on the poster.
const MinDimension = 10.0

// MetersPerDegree is the flat-earth approximation used for profile
// distances. Not a geodesic; fine at visualization scale.
const MetersPerDegree = 111000.0

// rangeEpsilon is substituted for a zero lat/lon range so single-point and
// perfectly straight tracks still project to finite coordinates.
const rangeEpsilon = 0.001

// ScaleToFit computes the largest width/height pair that preserves the
// source aspect ratio and fits the region on both axes. Enlargement is
// permitted. If the result would fall below MinDimension, the smaller
// dimension is clamped to the floor and the other recomputed from the
// original ratio. A degenerate source (zero width or height) is treated as
// square.
func ScaleToFit(region model.RegionSize, srcW, srcH float64) model.RegionSize {
	if srcW <= 0 || srcH <= 0 {
		srcW, srcH = 1, 1
	}

	scale := math.Min(region.Width/srcW, region.Height/srcH)
	w := srcW * scale
	h := srcH * scale

	ratio := srcW / srcH
	if w < MinDimension || h < MinDimension {
		if w < h {
			w = MinDimension
			h = w / ratio
		} else {
			h = MinDimension
			w = h * ratio
		}
	}

	return model.RegionSize{Width: w, Height: h}
}

// Rescale linearly maps value from [inMin, inMax] to [outMin, outMax].
// Callers must guard inMin == inMax by substituting an epsilon range
// before calling; this primitive does not.
func Rescale(value, inMin, inMax, outMin, outMax float64) float64 {
	return outMin + (value-inMin)/(inMax-inMin)*(outMax-outMin)
}

// Bounds is a lat/lon bounding box.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// BoundsOf computes the bounding box of the given coordinates.
func BoundsOf(coords []model.Coordinate) Bounds {
	mp := make(orb.MultiPoint, 0, len(coords))
	for _, c := range coords {
		mp = append(mp, orb.Point{c.Lon, c.Lat})
	}
	b := mp.Bound()
	return Bounds{
		MinLat: b.Min[1],
		MaxLat: b.Max[1],
		MinLon: b.Min[0],
		MaxLon: b.Max[0],
	}
}

// LatRange returns the latitude span, never less than the zero-range epsilon.
func (b Bounds) LatRange() float64 {
	if r := b.MaxLat - b.MinLat; r > 0 {
		return r
	}
	return rangeEpsilon
}

// LonRange returns the longitude span, never less than the zero-range epsilon.
func (b Bounds) LonRange() float64 {
	if r := b.MaxLon - b.MinLon; r > 0 {
		return r
	}
	return rangeEpsilon
}

// Project maps a coordinate into a width×height region with the given
// margin on each axis, using an equirectangular approximation. North is up,
// so Y is inverted relative to latitude.
func Project(lat, lon float64, b Bounds, width, height, margin float64) (x, y float64) {
	x = margin + ((lon-b.MinLon)/b.LonRange())*(width-2*margin)
	y = margin + ((b.MaxLat-lat)/b.LatRange())*(height-2*margin)
	return x, y
}

// FlatDistance returns the flat-earth distance between two coordinates in
// meters: sqrt(dLat² + dLon²) scaled by MetersPerDegree.
func FlatDistance(a, b model.Coordinate) float64 {
	dLat := b.Lat - a.Lat
	dLon := b.Lon - a.Lon
	return math.Sqrt(dLat*dLat+dLon*dLon) * MetersPerDegree
}

// Distance calculates the Haversine distance between two coordinates in meters.
func Distance(a, b model.Coordinate) float64 {
	const R = 6371000 // Earth radius in meters
	dLat := (b.Lat - a.Lat) * (math.Pi / 180.0)
	dLon := (b.Lon - a.Lon) * (math.Pi / 180.0)
	lat1 := a.Lat * (math.Pi / 180.0)
	lat2 := b.Lat * (math.Pi / 180.0)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return R * c
}

// Simplify reduces a track with Douglas-Peucker at the given tolerance in
// degrees. Altitude flags survive on the points that remain. A tolerance
// of zero returns the input unchanged.
func Simplify(coords []model.Coordinate, toleranceDeg float64) []model.Coordinate {
	if toleranceDeg <= 0 || len(coords) < 3 {
		return coords
	}

	ls := make(orb.LineString, 0, len(coords))
	index := make(map[orb.Point]model.Coordinate, len(coords))
	for _, c := range coords {
		p := orb.Point{c.Lon, c.Lat}
		ls = append(ls, p)
		if _, seen := index[p]; !seen {
			index[p] = c
		}
	}

	reduced := simplify.DouglasPeucker(toleranceDeg).Simplify(ls).(orb.LineString)

	out := make([]model.Coordinate, 0, len(reduced))
	for _, p := range reduced {
		out = append(out, index[p])
	}
	return out
}
