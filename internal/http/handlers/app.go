// Package handlers implements the JSON API the embedded page talks to.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"siteclone/internal/pipeline"
	"siteclone/internal/preview"
	"siteclone/internal/session"
)

// HealthProber checks a remote collaborator's health endpoint.
type HealthProber interface {
	Health(ctx context.Context) error
}

// App bundles the handler dependencies.
type App struct {
	Log          zerolog.Logger
	Orchestrator *pipeline.Orchestrator
	Session      *session.Session
	Previews     *preview.Manager
	Capture      HealthProber
	Defaults     pipeline.Config
}

func NewApp(log zerolog.Logger, orch *pipeline.Orchestrator, sess *session.Session, previews *preview.Manager, cap HealthProber, defaults pipeline.Config) *App {
	return &App{
		Log:          log,
		Orchestrator: orch,
		Session:      sess,
		Previews:     previews,
		Capture:      cap,
		Defaults:     defaults,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, detail string) {
	a.json(w, status, map[string]string{"error": code, "detail": detail})
}
