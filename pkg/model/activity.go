package model

import (
	"encoding/json"
	"fmt"
)

// Coordinate is a single GPS sample. Altitude is optional; HasAltitude
// reports whether the source carried a third component.
type Coordinate struct {
	Lat         float64
	Lon         float64
	Altitude    float64
	HasAltitude bool
}

// UnmarshalJSON accepts the upstream wire form: [lat, lon] or [lat, lon, alt].
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 2 {
		return fmt.Errorf("coordinate needs at least lat and lon, got %d values", len(parts))
	}
	c.Lat = parts[0]
	c.Lon = parts[1]
	if len(parts) > 2 {
		c.Altitude = parts[2]
		c.HasAltitude = true
	}
	return nil
}

// MarshalJSON emits the compact array form used by the upstream API.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if c.HasAltitude {
		return json.Marshal([]float64{c.Lat, c.Lon, c.Altitude})
	}
	return json.Marshal([]float64{c.Lat, c.Lon})
}

// KmSplit is the pace for one kilometer of an activity.
type KmSplit struct {
	Km   int     `json:"km"`
	Pace float64 `json:"pace_min_per_km"`
}

// ActivityRecord is one GPS-tracked activity as delivered by the upstream
// API client. It is owned by the caller and treated as immutable for the
// duration of a generation call.
type ActivityRecord struct {
	ID             int64        `json:"id,omitempty"`
	Name           string       `json:"name"`
	Type           string       `json:"type"`
	Distance       float64      `json:"distance"`             // meters
	MovingTime     int          `json:"moving_time"`          // seconds
	ElevationGain  float64      `json:"total_elevation_gain"` // meters
	StartDate      string       `json:"start_date,omitempty"`
	StartDateLocal string       `json:"start_date_local,omitempty"`
	Coordinates    []Coordinate `json:"coordinates,omitempty"`
	KmSplits       []KmSplit    `json:"km_splits,omitempty"`
}

// HasAltitudeData reports whether at least one coordinate carries altitude.
func (a *ActivityRecord) HasAltitudeData() bool {
	for _, c := range a.Coordinates {
		if c.HasAltitude {
			return true
		}
	}
	return false
}

// RegionSize is the width/height of a template placeholder region, in the
// template's own coordinate units.
type RegionSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the region carries no usable dimensions.
func (r RegionSize) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}
