package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"postergo/pkg/version"
)

// NewServer creates and configures the HTTP server. It accepts handlers
// for all API endpoints and a shutdownFunc for graceful shutdown.
func NewServer(addr string, posters *PosterHandler, stats *StatsHandler, tmpl *TemplateHandler, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health Endpoint
	mux.HandleFunc("GET /health", handleHealth)

	// 2. Version Endpoint
	mux.HandleFunc("GET /api/version", handleVersion)

	// 3. Poster Endpoints
	mux.HandleFunc("POST /api/posters", posters.HandleGenerate)
	mux.HandleFunc("POST /api/posters/preview", posters.HandlePreview)
	mux.HandleFunc("GET /api/posters", posters.HandleList)
	mux.HandleFunc("GET /api/posters/latest", posters.HandleLatest)
	mux.HandleFunc("GET /api/posters/{id}", posters.HandleGet)
	mux.HandleFunc("DELETE /api/posters/{id}", posters.HandleDelete)

	// 4. Stats Endpoints
	mux.Handle("GET /api/stats", stats)
	mux.HandleFunc("GET /api/stats/summary", stats.HandleSummary)

	// 5. Template Endpoint
	mux.HandleFunc("POST /api/template/reload", tmpl.HandleReload)

	// 6. Shutdown Endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Call shutdown in a goroutine to allow response to flush
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
