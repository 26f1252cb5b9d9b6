package api

import (
	"log/slog"
	"net/http"

	"postergo/pkg/layout"
)

// TemplateHandler exposes template maintenance operations.
type TemplateHandler struct {
	manager *layout.Manager
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(m *layout.Manager) *TemplateHandler {
	return &TemplateHandler{manager: m}
}

// HandleReload handles POST /api/template/reload: re-read the template
// file from disk. The previous content stays active on failure.
func (h *TemplateHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Reload(); err != nil {
		slog.Error("Template reload failed", "path", h.manager.Path(), "error", err)
		http.Error(w, "Reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded", "path": h.manager.Path()})
}
