package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"siteclone/internal/http/handlers"
	"siteclone/internal/middleware"
)

func NewRouter(app *handlers.App, log zerolog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(allowedOrigins),
		middleware.Logger(log),
	)

	r.Get("/", app.Index)
	r.Get("/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/run", app.Run)
		r.Get("/session", app.SessionStatus)
		r.Post("/reset", app.Reset)
		r.Post("/copy", app.Copy)
		r.Post("/open", app.Open)
	})

	r.Get("/preview/{id}", app.Preview)
	r.Get("/export/{id}", app.Export)

	return r
}
