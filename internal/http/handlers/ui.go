package handlers

import (
	"net/http"

	"siteclone/web"
)

// Index serves the embedded single-page UI.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(web.IndexHTML)
}
