// Package pipeline drives the two-stage capture→reconstruct pipeline and
// converts remote outcomes into session state transitions.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"siteclone/internal/locator"
	"siteclone/internal/monitoring"
	"siteclone/internal/preview"
	"siteclone/internal/providers"
	"siteclone/internal/providers/capture"
	"siteclone/internal/providers/reconstruct"
	"siteclone/internal/session"
)

// Capturer issues the capture call. Implemented by capture.Client.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Result, error)
}

// Reconstructor issues the reconstruct call. Implemented by reconstruct.Client.
type Reconstructor interface {
	Reconstruct(ctx context.Context, req reconstruct.Request) (*reconstruct.Result, error)
}

// Materializer wraps generated markup into a preview handle. Implemented by
// preview.Manager.
type Materializer interface {
	Materialize(markup string) preview.Handle
}

const defaultProgressClearDelay = 5 * time.Second

// Options wires the orchestrator's collaborators.
type Options struct {
	Capturer      Capturer
	Reconstructor Reconstructor
	Previews      Materializer
	Session       *session.Session
	Metrics       *monitoring.Metrics
	Logger        *zerolog.Logger

	// ProgressClearDelay is how long the completion message stays
	// visible. Zero means the default; negative disables clearing.
	ProgressClearDelay time.Duration
}

// Orchestrator owns the capture→reconstruct control flow. The reconstruct
// request is never issued before the capture call has fully succeeded.
type Orchestrator struct {
	capturer      Capturer
	reconstructor Reconstructor
	previews      Materializer
	session       *session.Session
	metrics       *monitoring.Metrics
	logger        zerolog.Logger
	clearDelay    time.Duration
}

// NewOrchestrator constructs an orchestrator from its collaborators.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	delay := opts.ProgressClearDelay
	if delay == 0 {
		delay = defaultProgressClearDelay
	}
	return &Orchestrator{
		capturer:      opts.Capturer,
		reconstructor: opts.Reconstructor,
		previews:      opts.Previews,
		session:       opts.Session,
		metrics:       opts.Metrics,
		logger:        logger,
		clearDelay:    delay,
	}
}

// Run executes a full pipeline run synchronously: validate, capture,
// reconstruct, materialize. Validation failures and the busy guard abort
// before any remote call.
func (o *Orchestrator) Run(ctx context.Context, raw string, cfg Config) error {
	runID, loc, cfg, err := o.begin(raw, cfg)
	if err != nil {
		return err
	}
	return o.execute(ctx, runID, loc, cfg)
}

// Launch validates and starts a run, then executes its remote stages in the
// background. Callers observe progress through the session snapshot.
func (o *Orchestrator) Launch(raw string, cfg Config) error {
	runID, loc, cfg, err := o.begin(raw, cfg)
	if err != nil {
		return err
	}
	go func() {
		_ = o.execute(context.Background(), runID, loc, cfg)
	}()
	return nil
}

func (o *Orchestrator) begin(raw string, cfg Config) (uint64, locator.Locator, Config, error) {
	loc, err := locator.Normalize(raw)
	if err != nil {
		return 0, locator.Locator{}, cfg, err
	}
	cfg = cfg.Clamp()
	runID, err := o.session.Begin(loc)
	if err != nil {
		return 0, locator.Locator{}, cfg, err
	}
	o.metrics.IncRunsTotal()
	o.logger.Info().
		Uint64("run_id", runID).
		Str("url", loc.String()).
		Str("model", cfg.Model).
		Msg("pipeline: run started")
	return runID, loc, cfg, nil
}

func (o *Orchestrator) execute(ctx context.Context, runID uint64, loc locator.Locator, cfg Config) error {
	started := time.Now()

	capRes, err := o.capturer.Capture(ctx, capture.Request{
		URL:               loc.String(),
		CaptureScreenshot: true,
		ViewportWidth:     cfg.ViewportWidth,
		ViewportHeight:    cfg.ViewportHeight,
		WaitTime:          cfg.SettleMs,
	})
	if err != nil {
		msg := failureMessage(err, "Failed to capture the website")
		o.metrics.IncFailuresTotal("capture")
		if !o.session.Fail(runID, msg) {
			o.logger.Warn().Uint64("run_id", runID).Msg("pipeline: stale capture failure discarded")
		} else {
			o.logger.Error().Err(err).Uint64("run_id", runID).Msg("pipeline: capture stage failed")
		}
		return err
	}
	if !o.session.StoreCapture(runID, capRes) {
		o.logger.Warn().Uint64("run_id", runID).Msg("pipeline: stale capture result discarded")
		return nil
	}

	recRes, err := o.reconstructor.Reconstruct(ctx, reconstruct.Request{
		Model:               cfg.Model,
		IncludeResponsive:   true,
		IncludeInteractions: true,
		ScrapedData:         capRes.Raw,
	})
	if err != nil {
		msg := failureMessage(err, "Failed to generate the clone")
		o.metrics.IncFailuresTotal("reconstruct")
		if !o.session.Fail(runID, msg) {
			o.logger.Warn().Uint64("run_id", runID).Msg("pipeline: stale reconstruct failure discarded")
		} else {
			o.logger.Error().Err(err).Uint64("run_id", runID).Msg("pipeline: reconstruct stage failed")
		}
		return err
	}

	if !o.session.Complete(runID, recRes, o.previews.Materialize) {
		o.logger.Warn().Uint64("run_id", runID).Msg("pipeline: stale reconstruct result discarded")
		return nil
	}
	o.metrics.ObserveRunDuration(time.Since(started))
	o.logger.Info().
		Uint64("run_id", runID).
		Str("model", recRes.ModelUsed).
		Int("markup_bytes", len(recRes.HTMLContent)).
		Dur("took", time.Since(started)).
		Msg("pipeline: run completed")

	if o.clearDelay > 0 {
		time.AfterFunc(o.clearDelay, func() {
			o.session.ClearProgress(runID)
		})
	}
	return nil
}

// failureMessage prefers the remote collaborator's detail message and falls
// back to a generic stage description for transport-level failures.
func failureMessage(err error, generic string) string {
	var rerr *providers.RemoteError
	if errors.As(err, &rerr) && rerr.Detail != "" {
		return rerr.Detail
	}
	var terr *providers.TransportError
	if errors.As(err, &terr) {
		return generic + ": " + terr.Err.Error()
	}
	return generic + ": " + err.Error()
}
