package model

import "time"

// PosterRecord is an archived poster: the generated SVG document plus the
// activity summary it was rendered from.
type PosterRecord struct {
	UUID          string    `json:"uuid"`
	ActivityID    string    `json:"activity_id"`
	Name          string    `json:"name"`
	ActivityType  string    `json:"activity_type"`
	Distance      float64   `json:"distance"`
	MovingTime    int       `json:"moving_time"`
	ElevationGain float64   `json:"total_elevation_gain"`
	StartDate     string    `json:"start_date"`
	SVG           string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}
