// Package format renders activity numbers as the short human-readable
// strings printed on posters. Labels follow the French convention of the
// poster layout.
package format

import (
	"fmt"
	"time"

	"postergo/pkg/model"
)

var frenchMonths = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Jun",
	"Jul", "Aoû", "Sep", "Oct", "Nov", "Déc",
}

var activityTypesFrench = map[string]string{
	"Run":              "Course",
	"Ride":             "Vélo",
	"Walk":             "Marche",
	"Hike":             "Randonnée",
	"Swim":             "Natation",
	"WeightTraining":   "Musculation",
	"Workout":          "Entraînement",
	"Yoga":             "Yoga",
	"VirtualRun":       "Course virtuelle",
	"VirtualRide":      "Vélo virtuel",
	"TrailRun":         "Trail",
	"MountainBikeRide": "VTT",
	"RoadBikeRide":     "Vélo de route",
}

// Duration renders seconds as "1h23m" or "45m". Non-positive input is "0m".
func Duration(seconds int) string {
	if seconds <= 0 {
		return "0m"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Distance renders meters as "12.5 km" above a kilometer, "850 m" below.
func Distance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return fmt.Sprintf("%.0f m", meters)
}

// Elevation renders an elevation gain, or "-- m" when there is none.
func Elevation(meters float64) string {
	if meters > 0 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return "-- m"
}

// Pace renders decimal minutes per kilometer as "m:ss", or "--:--" for
// non-positive input.
func Pace(minPerKm float64) string {
	if minPerKm <= 0 {
		return "--:--"
	}
	minutes := int(minPerKm)
	seconds := int((minPerKm - float64(minutes)) * 60)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// Speed renders km/h with one decimal, or "-- km/h" for non-positive input.
func Speed(kmh float64) string {
	if kmh <= 0 {
		return "-- km/h"
	}
	return fmt.Sprintf("%.1f km/h", kmh)
}

// Date renders an ISO 8601 timestamp as "15 Jan 2024" with French month
// abbreviations. Input that does not parse is returned as-is.
func Date(isoDate string) string {
	t, err := time.Parse(time.RFC3339, isoDate)
	if err != nil {
		t, err = time.Parse("2006-01-02", isoDate)
		if err != nil {
			return isoDate
		}
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// ActivityType translates a Strava activity type to French, passing
// unknown types through unchanged.
func ActivityType(activityType string) string {
	if fr, ok := activityTypesFrench[activityType]; ok {
		return fr
	}
	return activityType
}

// PosterReplacements builds the text placeholder map for an activity. The
// average speed and pace entries are present only when both distance and
// moving time are positive.
func PosterReplacements(activity *model.ActivityRecord) map[string]string {
	name := activity.Name
	if name == "" {
		name = "Activité Strava"
	}
	activityType := activity.Type
	if activityType == "" {
		activityType = "Activité"
	}

	replacements := map[string]string{
		"ACTIVITY_NAME":  name,
		"DISTANCE":       fmt.Sprintf("%.1f km", activity.Distance/1000),
		"DURATION":       Duration(activity.MovingTime),
		"ELEVATION_GAIN": Elevation(activity.ElevationGain),
		"ACTIVITY_TYPE":  ActivityType(activityType),
	}

	if activity.StartDate != "" {
		replacements["ACTIVITY_DATE"] = Date(activity.StartDate)
	}

	if activity.Distance > 0 && activity.MovingTime > 0 {
		speedKmh := activity.Distance / float64(activity.MovingTime) * 3.6
		replacements["AVERAGE_SPEED"] = Speed(speedKmh)
		replacements["AVERAGE_PACE"] = Pace(60 / speedKmh)
	}

	return replacements
}
