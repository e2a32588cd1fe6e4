package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"siteclone/internal/http/handlers"
	httpapi "siteclone/internal/http/httpapi"
	"siteclone/internal/infra"
	"siteclone/internal/monitoring"
	"siteclone/internal/pipeline"
	"siteclone/internal/preview"
	"siteclone/internal/providers/capture"
	"siteclone/internal/providers/reconstruct"
	"siteclone/internal/session"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	// Remote collaborator clients
	captureClient := capture.NewClient(capture.Options{
		BaseURL:        cfg.CaptureBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.CaptureTimeout,
	})
	reconstructClient := reconstruct.NewClient(reconstruct.Options{
		BaseURL:        cfg.ReconstructBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.ReconstructTimeout,
	})

	// Session, preview store and pipeline
	previews := preview.NewManager(preview.Options{
		BaseURL: cfg.PublicBaseURL,
		Logger:  &logger,
	})
	sess := session.New(previews)
	orch := pipeline.NewOrchestrator(pipeline.Options{
		Capturer:      captureClient,
		Reconstructor: reconstructClient,
		Previews:      previews,
		Session:       sess,
		Metrics:       monitoring.NewMetrics(),
		Logger:        &logger,
	})

	defaults := pipeline.DefaultConfig()
	defaults.Model = cfg.Model

	app := handlers.NewApp(logger, orch, sess, previews, captureClient, defaults)
	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("siteclone listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
