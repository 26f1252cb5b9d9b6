package tracker

import (
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := New()
	provider := "osm-tiles"

	totals, stats := tr.Snapshot()
	if len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}
	if totals.PostersGenerated != 0 {
		t.Errorf("Expected 0 posters, got %d", totals.PostersGenerated)
	}

	tr.TrackCacheHit(provider)
	tr.TrackCacheMiss(provider)
	tr.TrackFetchSuccess(provider)
	tr.TrackFetchFailure(provider)
	tr.TrackPosterGenerated()
	tr.TrackRendererFailure()

	totals, stats = tr.Snapshot()
	pStats, ok := stats[provider]
	if !ok {
		t.Fatalf("Expected stats for provider %s", provider)
	}

	if pStats.CacheHits != 1 {
		t.Errorf("Expected 1 CacheHit, got %d", pStats.CacheHits)
	}
	if pStats.CacheMisses != 1 {
		t.Errorf("Expected 1 CacheMiss, got %d", pStats.CacheMisses)
	}
	if pStats.FetchSuccesses != 1 {
		t.Errorf("Expected 1 FetchSuccess, got %d", pStats.FetchSuccesses)
	}
	if pStats.FetchFailures != 1 {
		t.Errorf("Expected 1 FetchFailure, got %d", pStats.FetchFailures)
	}
	if totals.PostersGenerated != 1 {
		t.Errorf("Expected 1 poster, got %d", totals.PostersGenerated)
	}
	if totals.RendererFailures != 1 {
		t.Errorf("Expected 1 renderer failure, got %d", totals.RendererFailures)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	tr := New()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackCacheHit("p")
			tr.TrackPosterGenerated()
		}()
	}
	wg.Wait()

	totals, stats := tr.Snapshot()
	if stats["p"].CacheHits != 50 {
		t.Errorf("Expected 50 hits, got %d", stats["p"].CacheHits)
	}
	if totals.PostersGenerated != 50 {
		t.Errorf("Expected 50 posters, got %d", totals.PostersGenerated)
	}
}
