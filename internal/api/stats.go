package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"postergo/pkg/model"
	"postergo/pkg/stats"
	"postergo/pkg/store"
	"postergo/pkg/tracker"
)

// summaryScanLimit bounds how much of the archive feeds an aggregation.
const summaryScanLimit = 5000

// StatsHandler exposes runtime counters and archive aggregates.
type StatsHandler struct {
	tracker *tracker.Tracker
	store   store.PosterStore
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(t *tracker.Tracker, st store.PosterStore) *StatsHandler {
	return &StatsHandler{tracker: t, store: st}
}

type ProviderStatsDTO struct {
	CacheHits      int64 `json:"cache_hits"`
	CacheMisses    int64 `json:"cache_misses"`
	FetchSuccesses int64 `json:"fetch_successes"`
	FetchFailures  int64 `json:"fetch_failures"`
	HitRate        int64 `json:"hit_rate"`
}

type StatsResponse struct {
	Totals    tracker.Totals              `json:"totals"`
	Providers map[string]ProviderStatsDTO `json:"providers"`
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	totals, providers := h.tracker.Snapshot()

	resp := StatsResponse{
		Totals:    totals,
		Providers: make(map[string]ProviderStatsDTO),
	}
	for provider, s := range providers {
		totalCache := s.CacheHits + s.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (s.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:      s.CacheHits,
			CacheMisses:    s.CacheMisses,
			FetchSuccesses: s.FetchSuccesses,
			FetchFailures:  s.FetchFailures,
			HitRate:        hitRate,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type SummaryResponse struct {
	Summary stats.Summary               `json:"summary"`
	Monthly map[string]stats.TypeTotals `json:"monthly"`
	Year    int                         `json:"year"`
	Records stats.Records               `json:"records"`
}

// HandleSummary handles GET /api/stats/summary. An optional year query
// parameter selects the monthly breakdown, defaulting to the current year.
func (h *StatsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		val, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = val
	}

	records, err := h.store.ListPosters(r.Context(), summaryScanLimit)
	if err != nil {
		slog.Error("Archive scan for summary failed", "error", err)
		http.Error(w, "Summary failed", http.StatusInternalServerError)
		return
	}

	posters := make([]model.PosterRecord, len(records))
	for i, rec := range records {
		posters[i] = *rec
	}

	writeJSON(w, http.StatusOK, SummaryResponse{
		Summary: stats.Summarize(posters),
		Monthly: stats.Monthly(posters, year),
		Year:    year,
		Records: stats.PersonalRecords(posters),
	})
}
