package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"siteclone/internal/locator"
	"siteclone/internal/preview"
	"siteclone/internal/session"
)

type runRequest struct {
	URL            string `json:"url"`
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`
	WaitTime       int    `json:"wait_time"`
	Model          string `json:"model"`
}

// Run validates the request and launches a pipeline run in the background.
// Clients poll GET /api/session for progress.
func (a *App) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	cfg := a.Defaults
	if req.ViewportWidth != 0 {
		cfg.ViewportWidth = req.ViewportWidth
	}
	if req.ViewportHeight != 0 {
		cfg.ViewportHeight = req.ViewportHeight
	}
	if req.WaitTime != 0 {
		cfg.SettleMs = req.WaitTime
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}

	if err := a.Orchestrator.Launch(req.URL, cfg); err != nil {
		var verr *locator.ValidationError
		switch {
		case errors.As(err, &verr):
			a.error(w, http.StatusBadRequest, "invalid_url", verr.Error())
		case errors.Is(err, session.ErrBusy):
			a.error(w, http.StatusConflict, "busy", "a run is already in flight")
		default:
			a.error(w, http.StatusInternalServerError, "internal", "failed to start run")
		}
		return
	}
	a.json(w, http.StatusAccepted, a.sessionView())
}

// SessionStatus returns the current session snapshot.
func (a *App) SessionStatus(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.sessionView())
}

// Reset clears the session and releases the current artifact, if any.
func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	a.Session.Reset()
	a.json(w, http.StatusOK, a.sessionView())
}

// Copy puts the raw generated markup on the platform clipboard. A clipboard
// failure is reported without touching the session.
func (a *App) Copy(w http.ResponseWriter, r *http.Request) {
	snap := a.Session.Snapshot()
	if snap.Artifact == nil {
		a.error(w, http.StatusConflict, "no_artifact", "no generated markup to copy")
		return
	}
	if err := a.Previews.CopyText(snap.Artifact.HTMLContent); err != nil {
		a.Log.Warn().Err(err).Msg("clipboard copy failed")
		a.error(w, http.StatusInternalServerError, "clipboard", "could not copy to clipboard")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "copied"})
}

// Open presents the current artifact preview in a new viewing context.
func (a *App) Open(w http.ResponseWriter, r *http.Request) {
	snap := a.Session.Snapshot()
	if err := a.Previews.Open(snap.Handle); err != nil {
		if errors.Is(err, preview.ErrUnknownHandle) {
			a.error(w, http.StatusNotFound, "no_artifact", "no preview to open")
			return
		}
		a.Log.Warn().Err(err).Msg("preview open failed")
		a.error(w, http.StatusInternalServerError, "browser", "could not open preview")
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "opened"})
}
