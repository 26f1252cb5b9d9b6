// Package gpxio turns GPX files into activity records. Strava-style
// summary figures that GPX does not carry directly (moving time, km
// splits, elevation gain) are derived from the track points.
package gpxio

import (
	"fmt"
	"os"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"postergo/pkg/geom"
	"postergo/pkg/model"
)

const (
	// maxSampleGap is the longest gap between samples still counted as
	// moving. Anything longer is treated as a pause.
	maxSampleGap = 10 * time.Second

	// minMovingSpeed filters out standing-still jitter, in m/s.
	minMovingSpeed = 0.5

	splitDistance = 1000.0 // meters per km split
)

// ParseFile reads and parses a GPX file.
func ParseFile(path string) (*model.ActivityRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gpx: %w", err)
	}
	return Parse(data)
}

// Parse builds an ActivityRecord from GPX bytes. All tracks and segments
// are flattened into a single point sequence in file order.
func Parse(data []byte) (*model.ActivityRecord, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}

	var (
		coords     []model.Coordinate
		timestamps []time.Time
	)
	for _, track := range g.Tracks {
		for _, segment := range track.Segments {
			for _, p := range segment.Points {
				c := model.Coordinate{Lat: p.Latitude, Lon: p.Longitude}
				if p.Elevation.NotNull() {
					c.Altitude = p.Elevation.Value()
					c.HasAltitude = true
				}
				coords = append(coords, c)
				timestamps = append(timestamps, p.Timestamp)
			}
		}
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("gpx contains no track points")
	}

	record := &model.ActivityRecord{
		Name:        g.Name,
		Coordinates: coords,
	}
	if record.Name == "" && len(g.Tracks) > 0 {
		record.Name = g.Tracks[0].Name
	}
	for _, ts := range timestamps {
		if !ts.IsZero() {
			record.StartDate = ts.UTC().Format(time.RFC3339)
			record.StartDateLocal = record.StartDate
			break
		}
	}

	derive(record, timestamps)
	return record, nil
}

// derive fills distance, moving time, elevation gain, and km splits from
// the point sequence.
func derive(record *model.ActivityRecord, timestamps []time.Time) {
	coords := record.Coordinates

	var (
		distance   float64
		movingSecs float64
		gain       float64
		splitDist  float64
		splitSecs  float64
	)

	for i := 1; i < len(coords); i++ {
		prev, cur := coords[i-1], coords[i]
		d := geom.Distance(prev, cur)
		distance += d

		if prev.HasAltitude && cur.HasAltitude {
			if rise := cur.Altitude - prev.Altitude; rise > 0 {
				gain += rise
			}
		}

		var dt time.Duration
		if !timestamps[i-1].IsZero() && !timestamps[i].IsZero() {
			dt = timestamps[i].Sub(timestamps[i-1])
		}
		moving := dt > 0 && dt <= maxSampleGap && d/dt.Seconds() >= minMovingSpeed
		if moving {
			movingSecs += dt.Seconds()
		}

		// Walk split boundaries inside this leg, attributing time
		// proportionally to distance on either side of each boundary.
		remainD := d
		remainT := 0.0
		if moving {
			remainT = dt.Seconds()
		}
		for splitDist+remainD >= splitDistance {
			need := splitDistance - splitDist
			frac := 0.0
			if remainD > 0 {
				frac = need / remainD
			}
			splitSecs += remainT * frac
			remainT *= 1 - frac
			remainD -= need

			if splitSecs > 0 {
				record.KmSplits = append(record.KmSplits, model.KmSplit{
					Km:   len(record.KmSplits) + 1,
					Pace: splitSecs / 60,
				})
			}
			splitDist = 0
			splitSecs = 0
		}
		splitDist += remainD
		splitSecs += remainT
	}

	record.Distance = distance
	record.MovingTime = int(movingSecs + 0.5)
	record.ElevationGain = gain
}
