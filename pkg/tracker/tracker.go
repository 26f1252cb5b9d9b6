// Package tracker collects runtime counters: poster generation outcomes
// and per-provider fetch/cache statistics for the tile layer.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks usage statistics per provider plus poster totals.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats

	postersGenerated atomic.Int64
	rendererFailures atomic.Int64
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	CacheHits      int64
	CacheMisses    int64
	FetchSuccesses int64
	FetchFailures  int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheHits, 1)
}

func (t *Tracker) TrackCacheMiss(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheMisses, 1)
}

func (t *Tracker) TrackFetchSuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).FetchSuccesses, 1)
}

func (t *Tracker) TrackFetchFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).FetchFailures, 1)
}

// TrackPosterGenerated counts one completed poster.
func (t *Tracker) TrackPosterGenerated() {
	t.postersGenerated.Add(1)
}

// TrackRendererFailure counts one chart renderer that had to fall back.
func (t *Tracker) TrackRendererFailure() {
	t.rendererFailures.Add(1)
}

// Totals holds the poster-level counters.
type Totals struct {
	PostersGenerated int64 `json:"posters_generated"`
	RendererFailures int64 `json:"renderer_failures"`
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() (Totals, map[string]ProviderStats) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	providers := make(map[string]ProviderStats, len(t.stats))
	for k, v := range t.stats {
		providers[k] = ProviderStats{
			CacheHits:      atomic.LoadInt64(&v.CacheHits),
			CacheMisses:    atomic.LoadInt64(&v.CacheMisses),
			FetchSuccesses: atomic.LoadInt64(&v.FetchSuccesses),
			FetchFailures:  atomic.LoadInt64(&v.FetchFailures),
		}
	}

	totals := Totals{
		PostersGenerated: t.postersGenerated.Load(),
		RendererFailures: t.rendererFailures.Load(),
	}
	return totals, providers
}
