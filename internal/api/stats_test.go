package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCounters(t *testing.T) {
	ts := newTestServer(t)
	ts.tracker.TrackCacheHit("osm-tiles")
	ts.tracker.TrackCacheHit("osm-tiles")
	ts.tracker.TrackCacheMiss("osm-tiles")
	ts.tracker.TrackFetchSuccess("osm-tiles")
	ts.tracker.TrackPosterGenerated()

	w := ts.do(t, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, int64(1), resp.Totals.PostersGenerated)
	require.Contains(t, resp.Providers, "osm-tiles")
	osm := resp.Providers["osm-tiles"]
	assert.Equal(t, int64(2), osm.CacheHits)
	assert.Equal(t, int64(1), osm.CacheMisses)
	assert.Equal(t, int64(66), osm.HitRate)
}

func TestStatsSummary(t *testing.T) {
	ts := newTestServer(t)

	// Seed the archive through the API itself.
	w := ts.do(t, "POST", "/api/posters", activityJSON(t))
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, "GET", "/api/stats/summary?year=2024", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2024, resp.Year)
	assert.Equal(t, 1, resp.Summary.TotalActivities)
	assert.Equal(t, "8.0 km", resp.Summary.TotalDistance)
	assert.Equal(t, 1, resp.Monthly["Avr"].Count)
	require.NotNil(t, resp.Records.LongestRun)
	assert.Equal(t, "Tour du lac", resp.Records.LongestRun.Name)
}

func TestStatsSummaryInvalidYear(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, "GET", "/api/stats/summary?year=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
