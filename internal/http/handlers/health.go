package handlers

import (
	"context"
	"net/http"
	"time"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if a.Capture != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Capture.Health(ctx); err != nil {
			body["capture_service"] = "unreachable"
		} else {
			body["capture_service"] = "ok"
		}
	}
	a.json(w, http.StatusOK, body)
}
