package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Preview renders the materialized artifact as a standalone HTML page.
func (a *App) Preview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	markup, ok := a.Previews.Markup(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "artifact not found or already released")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(markup))
}

// Export sends the artifact as a named file download.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	markup, filename, ok := a.Previews.Export(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "artifact not found or already released")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write([]byte(markup))
}
