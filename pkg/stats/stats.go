// Package stats aggregates archived posters into athlete-facing summaries:
// overall totals, per-type breakdowns, monthly volumes, and personal
// records. All distance and time figures come back pre-formatted.
package stats

import (
	"time"

	"postergo/pkg/format"
	"postergo/pkg/model"
)

// recentLimit caps the recent-activities list in a summary.
const recentLimit = 10

// monthNames are the French month keys of a monthly breakdown.
var monthNames = [12]string{
	"Jan", "Fév", "Mar", "Avr", "Mai", "Juin",
	"Juil", "Août", "Sep", "Oct", "Nov", "Déc",
}

// TypeTotals is an aggregated bucket of activities.
type TypeTotals struct {
	Count     int    `json:"count"`
	Distance  string `json:"distance"`
	Time      string `json:"time"`
	Elevation string `json:"elevation"`
}

// RecentActivity is one formatted entry in the recent list.
type RecentActivity struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Time      string `json:"time"`
	Pace      string `json:"pace,omitempty"`
	Elevation string `json:"elevation"`
	Date      string `json:"date,omitempty"`
}

// Summary is the aggregate view over the whole archive.
type Summary struct {
	TotalActivities int                   `json:"total_activities"`
	TotalDistance   string                `json:"total_distance"`
	TotalTime       string                `json:"total_time"`
	TotalElevation  string                `json:"total_elevation"`
	ByType          map[string]TypeTotals `json:"by_type"`
	Recent          []RecentActivity      `json:"recent_activities"`
}

// RecordEntry is one personal record with its formatted value.
type RecordEntry struct {
	Name      string `json:"name"`
	Date      string `json:"date,omitempty"`
	Distance  string `json:"distance,omitempty"`
	Time      string `json:"time,omitempty"`
	Pace      string `json:"pace,omitempty"`
	Elevation string `json:"elevation,omitempty"`
}

// Records holds the personal bests found in the archive. Absent records
// stay nil.
type Records struct {
	LongestRun   *RecordEntry `json:"longest_run"`
	LongestRide  *RecordEntry `json:"longest_ride"`
	Fastest5K    *RecordEntry `json:"fastest_5k"`
	Fastest10K   *RecordEntry `json:"fastest_10k"`
	BiggestClimb *RecordEntry `json:"biggest_climb"`
}

// paceOf formats the average pace for a distance/time pair, empty when it
// cannot be derived.
func paceOf(distanceM float64, movingTimeS int) string {
	if distanceM <= 0 || movingTimeS <= 0 {
		return ""
	}
	return format.Pace(float64(movingTimeS) / 60 / (distanceM / 1000))
}

// Summarize aggregates posters, assumed ordered most recent first.
func Summarize(posters []model.PosterRecord) Summary {
	summary := Summary{
		TotalDistance:  format.Distance(0),
		TotalTime:      format.Duration(0),
		TotalElevation: format.Elevation(0),
		ByType:         map[string]TypeTotals{},
		Recent:         []RecentActivity{},
	}
	if len(posters) == 0 {
		return summary
	}

	type bucket struct {
		count     int
		distance  float64
		timeS     int
		elevation float64
	}
	var (
		totalDistance  float64
		totalTime      int
		totalElevation float64
		byType         = map[string]*bucket{}
	)

	for _, p := range posters {
		totalDistance += p.Distance
		totalTime += p.MovingTime
		totalElevation += p.ElevationGain

		key := p.ActivityType
		if key == "" {
			key = "Unknown"
		}
		b := byType[key]
		if b == nil {
			b = &bucket{}
			byType[key] = b
		}
		b.count++
		b.distance += p.Distance
		b.timeS += p.MovingTime
		b.elevation += p.ElevationGain
	}

	summary.TotalActivities = len(posters)
	summary.TotalDistance = format.Distance(totalDistance)
	summary.TotalTime = format.Duration(totalTime)
	summary.TotalElevation = format.Elevation(totalElevation)
	for key, b := range byType {
		summary.ByType[key] = TypeTotals{
			Count:     b.count,
			Distance:  format.Distance(b.distance),
			Time:      format.Duration(b.timeS),
			Elevation: format.Elevation(b.elevation),
		}
	}

	for _, p := range posters[:min(len(posters), recentLimit)] {
		entry := RecentActivity{
			UUID:      p.UUID,
			Name:      p.Name,
			Type:      p.ActivityType,
			Distance:  format.Distance(p.Distance),
			Time:      format.Duration(p.MovingTime),
			Elevation: format.Elevation(p.ElevationGain),
			Date:      format.Date(p.StartDate),
		}
		if p.ActivityType == "Run" {
			entry.Pace = paceOf(p.Distance, p.MovingTime)
		}
		summary.Recent = append(summary.Recent, entry)
	}
	return summary
}

// Monthly buckets posters by month of the given year. All twelve months
// are present, zero-filled when empty.
func Monthly(posters []model.PosterRecord, year int) map[string]TypeTotals {
	type bucket struct {
		count     int
		distance  float64
		timeS     int
		elevation float64
	}
	var months [12]bucket

	for _, p := range posters {
		ts, ok := parseDate(p.StartDate)
		if !ok || ts.Year() != year {
			continue
		}
		b := &months[ts.Month()-1]
		b.count++
		b.distance += p.Distance
		b.timeS += p.MovingTime
		b.elevation += p.ElevationGain
	}

	out := make(map[string]TypeTotals, 12)
	for i, b := range months {
		out[monthNames[i]] = TypeTotals{
			Count:     b.count,
			Distance:  format.Distance(b.distance),
			Time:      format.Duration(b.timeS),
			Elevation: format.Elevation(b.elevation),
		}
	}
	return out
}

// PersonalRecords scans the archive for bests. The 5k and 10k windows
// tolerate GPS slack around the nominal distance.
func PersonalRecords(posters []model.PosterRecord) Records {
	var (
		records     Records
		longestRun  float64
		longestRide float64
		fastest5k   int
		fastest10k  int
		biggest     float64
	)

	for _, p := range posters {
		date := format.Date(p.StartDate)

		switch p.ActivityType {
		case "Run":
			if p.Distance > longestRun {
				longestRun = p.Distance
				records.LongestRun = &RecordEntry{
					Name:     p.Name,
					Date:     date,
					Distance: format.Distance(p.Distance),
				}
			}
			if p.MovingTime > 0 && p.Distance >= 4800 && p.Distance <= 5200 {
				if fastest5k == 0 || p.MovingTime < fastest5k {
					fastest5k = p.MovingTime
					records.Fastest5K = &RecordEntry{
						Name: p.Name,
						Date: date,
						Time: format.Duration(p.MovingTime),
						Pace: paceOf(p.Distance, p.MovingTime),
					}
				}
			}
			if p.MovingTime > 0 && p.Distance >= 9800 && p.Distance <= 10200 {
				if fastest10k == 0 || p.MovingTime < fastest10k {
					fastest10k = p.MovingTime
					records.Fastest10K = &RecordEntry{
						Name: p.Name,
						Date: date,
						Time: format.Duration(p.MovingTime),
						Pace: paceOf(p.Distance, p.MovingTime),
					}
				}
			}
		case "Ride":
			if p.Distance > longestRide {
				longestRide = p.Distance
				records.LongestRide = &RecordEntry{
					Name:     p.Name,
					Date:     date,
					Distance: format.Distance(p.Distance),
				}
			}
		}

		if p.ElevationGain > biggest {
			biggest = p.ElevationGain
			records.BiggestClimb = &RecordEntry{
				Name:      p.Name,
				Date:      date,
				Elevation: format.Elevation(p.ElevationGain),
			}
		}
	}
	return records
}

// parseDate accepts the RFC3339 form used upstream or a bare date.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
