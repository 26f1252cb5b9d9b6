package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"postergo/pkg/model"
	"postergo/pkg/poster"
	"postergo/pkg/store"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500

	// maxActivityBody caps a POST body. A dense multi-hour GPS stream
	// stays well under this.
	maxActivityBody = 16 << 20
)

// PosterHandler exposes poster generation and the archive. The state
// store tracks the most recently archived poster; it may be nil, in which
// case the latest endpoint always reports not found.
type PosterHandler struct {
	gen   *poster.Generator
	store store.PosterStore
	state store.StateStore
}

// NewPosterHandler creates a new poster handler.
func NewPosterHandler(gen *poster.Generator, st store.PosterStore, state store.StateStore) *PosterHandler {
	return &PosterHandler{gen: gen, store: st, state: state}
}

func (h *PosterHandler) decodeActivity(w http.ResponseWriter, r *http.Request) (*model.ActivityRecord, bool) {
	var activity model.ActivityRecord
	body := http.MaxBytesReader(w, r.Body, maxActivityBody)
	if err := json.NewDecoder(body).Decode(&activity); err != nil {
		http.Error(w, "Invalid activity JSON: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return &activity, true
}

// HandleGenerate handles POST /api/posters: generate from a JSON activity
// body and archive the result.
func (h *PosterHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.decodeActivity(w, r)
	if !ok {
		return
	}

	doc, err := h.gen.Generate(r.Context(), activity)
	if err != nil {
		slog.Error("Poster generation failed", "activity", activity.Name, "error", err)
		http.Error(w, "Generation failed", http.StatusInternalServerError)
		return
	}

	record, err := h.gen.Archive(r.Context(), activity, doc)
	if err != nil {
		slog.Error("Poster archive failed", "activity", activity.Name, "error", err)
		http.Error(w, "Archive failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Location", "/api/posters/"+record.UUID)
	writeJSON(w, http.StatusCreated, record)
}

// HandlePreview handles POST /api/posters/preview: generate without
// archiving and return the SVG directly.
func (h *PosterHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	activity, ok := h.decodeActivity(w, r)
	if !ok {
		return
	}

	doc, err := h.gen.Generate(r.Context(), activity)
	if err != nil {
		slog.Error("Poster preview failed", "activity", activity.Name, "error", err)
		http.Error(w, "Generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(doc)); err != nil {
		slog.Error("Failed to write poster preview", "error", err)
	}
}

// HandleGet handles GET /api/posters/{id}: serve an archived SVG.
func (h *PosterHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.GetPoster(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("Poster lookup failed", "error", err)
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "Poster not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(record.SVG)); err != nil {
		slog.Error("Failed to write archived poster", "error", err)
	}
}

// HandleLatest handles GET /api/posters/latest: serve the most recently
// archived poster.
func (h *PosterHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if h.state == nil {
		http.Error(w, "No poster generated yet", http.StatusNotFound)
		return
	}
	id, ok := h.state.GetState(r.Context(), poster.LastPosterKey)
	if !ok {
		http.Error(w, "No poster generated yet", http.StatusNotFound)
		return
	}

	record, err := h.store.GetPoster(r.Context(), id)
	if err != nil {
		slog.Error("Latest poster lookup failed", "uuid", id, "error", err)
		http.Error(w, "Lookup failed", http.StatusInternalServerError)
		return
	}
	if record == nil {
		// The pointed-at poster was deleted out from under the key.
		http.Error(w, "Poster not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write([]byte(record.SVG)); err != nil {
		slog.Error("Failed to write latest poster", "error", err)
	}
}

// HandleList handles GET /api/posters.
func (h *PosterHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		val, err := strconv.Atoi(s)
		if err != nil || val < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(val, maxListLimit)
	}

	records, err := h.store.ListPosters(r.Context(), limit)
	if err != nil {
		slog.Error("Poster listing failed", "error", err)
		http.Error(w, "Listing failed", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*model.PosterRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleDelete handles DELETE /api/posters/{id}. Deleting the poster the
// latest pointer refers to clears the pointer as well.
func (h *PosterHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeletePoster(r.Context(), id); err != nil {
		slog.Error("Poster deletion failed", "error", err)
		http.Error(w, "Deletion failed", http.StatusInternalServerError)
		return
	}
	if h.state != nil {
		if latest, ok := h.state.GetState(r.Context(), poster.LastPosterKey); ok && latest == id {
			if err := h.state.DeleteState(r.Context(), poster.LastPosterKey); err != nil {
				slog.Warn("Failed to clear latest poster pointer", "error", err)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}
