// Package session holds the single in-memory aggregate describing one
// pipeline run: its stage, captured data, generated artifact and error.
// Only the orchestrator and the explicit reset action mutate it.
package session

import (
	"errors"
	"sync"

	"siteclone/internal/locator"
	"siteclone/internal/preview"
	"siteclone/internal/providers/capture"
	"siteclone/internal/providers/reconstruct"
)

// Stage enumerates the legal states of a run.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageCapturing Stage = "capturing"
	StageAnalyzing Stage = "analyzing"
	StageCompleted Stage = "completed"
	StageFailed    Stage = "failed"
)

// ErrBusy rejects a new run while one is already in flight.
var ErrBusy = errors.New("session: a run is already in flight")

// Releaser frees a preview handle. Implemented by preview.Manager.
type Releaser interface {
	Release(preview.Handle)
}

// Session is the mutable aggregate. Exactly one exists per process. All
// transitions are guarded by the run identifier handed out by Begin, so a
// late remote response can never be applied to a session that has since
// been reset or replaced.
type Session struct {
	mu       sync.Mutex
	releaser Releaser

	stage    Stage
	runSeq   uint64
	runID    uint64
	loc      locator.Locator
	capture  *capture.Result
	artifact *reconstruct.Result
	errText  string
	handle   preview.Handle
	progress string
}

// Snapshot is a read-only copy of the session for the presentation layer.
type Snapshot struct {
	Stage    Stage
	RunID    uint64
	Locator  string
	Capture  *capture.Result
	Artifact *reconstruct.Result
	Error    string
	Handle   preview.Handle
	Progress string
}

// New returns an idle session whose released handles go through rel.
func New(rel Releaser) *Session {
	return &Session{releaser: rel, stage: StageIdle}
}

// Begin starts a new run: it rejects when a run is in flight, otherwise
// clears the previous run in full (releasing any live handle) and enters
// Capturing. The returned run identifier must accompany every later
// transition of this run.
func (s *Session) Begin(loc locator.Locator) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == StageCapturing || s.stage == StageAnalyzing {
		return 0, ErrBusy
	}
	s.clearLocked()
	s.runSeq++
	s.runID = s.runSeq
	s.loc = loc
	s.stage = StageCapturing
	s.progress = "Capturing website structure, assets and screenshot..."
	return s.runID, nil
}

// StoreCapture records a successful capture and enters Analyzing. It
// reports false when the run was superseded, in which case the result is
// discarded.
func (s *Session) StoreCapture(runID uint64, res *capture.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID || s.stage != StageCapturing {
		return false
	}
	s.capture = res
	s.stage = StageAnalyzing
	s.progress = "Analyzing captured data and generating markup..."
	return true
}

// Fail moves an in-flight run into the terminal failed state. Captured data
// already stored stays readable. Stale or misplaced failures are ignored.
func (s *Session) Fail(runID uint64, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		return false
	}
	if s.stage != StageCapturing && s.stage != StageAnalyzing {
		return false
	}
	s.stage = StageFailed
	s.errText = msg
	s.progress = ""
	return true
}

// Complete stores the generated artifact and materializes its preview
// handle strictly after both remote calls have succeeded. The materialize
// callback runs only when the run is still current, so a stale completion
// never creates a handle that would have to be cleaned up.
func (s *Session) Complete(runID uint64, res *reconstruct.Result, materialize func(markup string) preview.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID || s.stage != StageAnalyzing {
		return false
	}
	s.artifact = res
	s.handle = materialize(res.HTMLContent)
	s.stage = StageCompleted
	s.progress = "Clone generated successfully."
	return true
}

// Reset returns the session to Idle, releasing the handle before clearing
// its reference. It also advances the run identifier so any response still
// in flight is discarded on arrival rather than applied.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	s.stage = StageIdle
	s.runSeq++
	s.runID = s.runSeq
}

// ClearProgress drops the progress description of a completed run. Purely
// cosmetic; a newer run keeps its own text.
func (s *Session) ClearProgress(runID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID || s.stage != StageCompleted {
		return
	}
	s.progress = ""
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Stage:    s.stage,
		RunID:    s.runID,
		Locator:  s.loc.String(),
		Capture:  s.capture,
		Artifact: s.artifact,
		Error:    s.errText,
		Handle:   s.handle,
		Progress: s.progress,
	}
}

// clearLocked wipes every per-run field. The handle is released exactly
// once, before its reference is dropped. Callers hold s.mu.
func (s *Session) clearLocked() {
	if !s.handle.IsZero() {
		if s.releaser != nil {
			s.releaser.Release(s.handle)
		}
		s.handle = preview.Handle{}
	}
	s.loc = locator.Locator{}
	s.capture = nil
	s.artifact = nil
	s.errText = ""
	s.progress = ""
}
