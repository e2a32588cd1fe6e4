package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"siteclone/internal/locator"
	"siteclone/internal/preview"
	"siteclone/internal/providers"
	"siteclone/internal/providers/capture"
	"siteclone/internal/providers/reconstruct"
	"siteclone/internal/session"
)

type fakeCapturer struct {
	mu       sync.Mutex
	calls    []capture.Request
	result   *capture.Result
	err      error
	blocking chan struct{} // when set, Capture waits until closed
}

func (f *fakeCapturer) Capture(ctx context.Context, req capture.Request) (*capture.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	blocking := f.blocking
	f.mu.Unlock()
	if blocking != nil {
		<-blocking
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeCapturer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeReconstructor struct {
	mu     sync.Mutex
	calls  []reconstruct.Request
	result *reconstruct.Result
	err    error
}

func (f *fakeReconstructor) Reconstruct(ctx context.Context, req reconstruct.Request) (*reconstruct.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeReconstructor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func captureResult() *capture.Result {
	raw := []byte(`{"url":"https://example.com","title":"Example","stats":{"images_found":2,"css_rules_found":10,"dom_elements":50}}`)
	var res capture.Result
	_ = json.Unmarshal(raw, &res)
	res.Raw = raw
	return &res
}

func newTestRig(cap *fakeCapturer, rec *fakeReconstructor) (*Orchestrator, *session.Session, *preview.Manager) {
	previews := preview.NewManager(preview.Options{
		BaseURL:  "http://localhost:8080",
		OpenURL:  func(string) error { return nil },
		CopyText: func(string) error { return nil },
	})
	sess := session.New(previews)
	orch := NewOrchestrator(Options{
		Capturer:           cap,
		Reconstructor:      rec,
		Previews:           previews,
		Session:            sess,
		ProgressClearDelay: -1, // keep tests deterministic
	})
	return orch, sess, previews
}

func TestRunHappyPath(t *testing.T) {
	cap := &fakeCapturer{result: captureResult()}
	rec := &fakeReconstructor{result: &reconstruct.Result{
		Status:      "success",
		ModelUsed:   "gpt-4o",
		HTMLContent: "<!DOCTYPE html>\n<html></html>",
	}}
	orch, sess, previews := newTestRig(cap, rec)

	if err := orch.Run(context.Background(), "example.com", DefaultConfig()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if cap.callCount() != 1 || rec.callCount() != 1 {
		t.Fatalf("calls = %d capture, %d reconstruct", cap.callCount(), rec.callCount())
	}
	// Normalized locator reaches the capture request.
	if got := cap.calls[0].URL; got != "https://example.com" {
		t.Fatalf("capture url = %q, want https://example.com", got)
	}
	if !cap.calls[0].CaptureScreenshot {
		t.Fatalf("capture request must ask for a screenshot")
	}
	// The reconstruct payload is the capture body, verbatim.
	if string(rec.calls[0].ScrapedData) != string(cap.result.Raw) {
		t.Fatalf("scraped_data differs from capture raw body")
	}
	if !rec.calls[0].IncludeResponsive || !rec.calls[0].IncludeInteractions {
		t.Fatalf("reconstruct flags not set: %+v", rec.calls[0])
	}

	snap := sess.Snapshot()
	if snap.Stage != session.StageCompleted {
		t.Fatalf("stage = %q, want completed", snap.Stage)
	}
	if snap.Capture == nil || snap.Artifact == nil || snap.Handle.IsZero() {
		t.Fatalf("completed session missing data: %+v", snap)
	}
	if _, ok := previews.Markup(snap.Handle.ID); !ok {
		t.Fatalf("artifact markup not materialized")
	}
}

func TestRunValidationFailureNeverCalls(t *testing.T) {
	cap := &fakeCapturer{result: captureResult()}
	rec := &fakeReconstructor{}
	orch, sess, _ := newTestRig(cap, rec)

	err := orch.Run(context.Background(), "", DefaultConfig())
	var verr *locator.ValidationError
	if !errors.As(err, &verr) || verr.Kind != locator.KindEmpty {
		t.Fatalf("error = %v, want empty ValidationError", err)
	}
	if cap.callCount() != 0 {
		t.Fatalf("capture called despite validation failure")
	}
	if snap := sess.Snapshot(); snap.Stage != session.StageIdle {
		t.Fatalf("stage = %q, want idle", snap.Stage)
	}
}

func TestRunCaptureFailureSkipsReconstruct(t *testing.T) {
	cap := &fakeCapturer{err: &providers.RemoteError{Op: "capture", Status: 500, Detail: "Scraping failed: timeout"}}
	rec := &fakeReconstructor{}
	orch, sess, _ := newTestRig(cap, rec)

	if err := orch.Run(context.Background(), "example.com", DefaultConfig()); err == nil {
		t.Fatalf("expected capture failure to propagate")
	}
	if rec.callCount() != 0 {
		t.Fatalf("reconstruct called after capture failure")
	}
	snap := sess.Snapshot()
	if snap.Stage != session.StageFailed {
		t.Fatalf("stage = %q, want failed", snap.Stage)
	}
	if !strings.Contains(snap.Error, "timeout") {
		t.Fatalf("error text = %q, want remote detail", snap.Error)
	}
	if snap.Capture != nil || !snap.Handle.IsZero() {
		t.Fatalf("capture failure leaked data: %+v", snap)
	}
}

func TestRunReconstructFailureRetainsCapture(t *testing.T) {
	cap := &fakeCapturer{result: captureResult()}
	rec := &fakeReconstructor{err: &providers.RemoteError{Op: "reconstruct", Status: 500, Detail: "AI cloning failed"}}
	orch, sess, _ := newTestRig(cap, rec)

	if err := orch.Run(context.Background(), "example.com", DefaultConfig()); err == nil {
		t.Fatalf("expected reconstruct failure to propagate")
	}
	snap := sess.Snapshot()
	if snap.Stage != session.StageFailed {
		t.Fatalf("stage = %q, want failed", snap.Stage)
	}
	if snap.Capture == nil || snap.Capture.Stats.ImagesFound != 2 {
		t.Fatalf("captured stats not retained: %+v", snap.Capture)
	}
	if snap.Artifact != nil || !snap.Handle.IsZero() {
		t.Fatalf("failed run exposed an artifact: %+v", snap)
	}
}

func TestRunTransportFailureUsesGenericMessage(t *testing.T) {
	cap := &fakeCapturer{err: &providers.TransportError{Op: "capture", Err: errors.New("connection refused")}}
	rec := &fakeReconstructor{}
	orch, sess, _ := newTestRig(cap, rec)

	if err := orch.Run(context.Background(), "example.com", DefaultConfig()); err == nil {
		t.Fatalf("expected transport failure to propagate")
	}
	snap := sess.Snapshot()
	if !strings.Contains(snap.Error, "Failed to capture the website") {
		t.Fatalf("error text = %q, want generic capture message", snap.Error)
	}
}

func TestBusyGuardPreventsConcurrentCaptures(t *testing.T) {
	gate := make(chan struct{})
	cap := &fakeCapturer{result: captureResult(), blocking: gate}
	rec := &fakeReconstructor{result: &reconstruct.Result{HTMLContent: "<html></html>"}}
	orch, _, _ := newTestRig(cap, rec)

	done := make(chan error, 1)
	go func() {
		done <- orch.Run(context.Background(), "example.com", DefaultConfig())
	}()

	// Wait for the first capture call to be in flight.
	for cap.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	if err := orch.Run(context.Background(), "example.com", DefaultConfig()); !errors.Is(err, session.ErrBusy) {
		t.Fatalf("second run error = %v, want ErrBusy", err)
	}
	if cap.callCount() != 1 {
		t.Fatalf("capture calls = %d, want 1", cap.callCount())
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestLateResponseAfterResetIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	cap := &fakeCapturer{result: captureResult(), blocking: gate}
	rec := &fakeReconstructor{result: &reconstruct.Result{HTMLContent: "<html></html>"}}
	orch, sess, _ := newTestRig(cap, rec)

	done := make(chan error, 1)
	go func() {
		done <- orch.Run(context.Background(), "example.com", DefaultConfig())
	}()
	for cap.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	// Reset while the capture call is outstanding; the late response must
	// not re-animate the cleared session.
	sess.Reset()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	if rec.callCount() != 0 {
		t.Fatalf("reconstruct issued for a superseded run")
	}
	if snap := sess.Snapshot(); snap.Stage != session.StageIdle || snap.Capture != nil {
		t.Fatalf("stale response applied: %+v", snap)
	}
}

func TestConfigClamping(t *testing.T) {
	cfg := Config{ViewportWidth: 99999, ViewportHeight: 1, SettleMs: 100, Model: "gpt-9"}.Clamp()
	if cfg.ViewportWidth != MaxViewportWidth {
		t.Fatalf("width = %d, want %d", cfg.ViewportWidth, MaxViewportWidth)
	}
	if cfg.ViewportHeight != MinViewportHeight {
		t.Fatalf("height = %d, want %d", cfg.ViewportHeight, MinViewportHeight)
	}
	if cfg.SettleMs != MinSettleMs {
		t.Fatalf("settle = %d, want %d", cfg.SettleMs, MinSettleMs)
	}
	if cfg.Model != "gpt-4o" {
		t.Fatalf("model = %q, want gpt-4o", cfg.Model)
	}

	unset := Config{}.Clamp()
	if unset != DefaultConfig() {
		t.Fatalf("zero config clamped to %+v, want defaults", unset)
	}
}

func TestClampedConfigReachesCaptureRequest(t *testing.T) {
	cap := &fakeCapturer{result: captureResult()}
	rec := &fakeReconstructor{result: &reconstruct.Result{HTMLContent: "<html></html>"}}
	orch, _, _ := newTestRig(cap, rec)

	cfg := Config{ViewportWidth: 50, ViewportHeight: 5000, SettleMs: 99999}
	if err := orch.Run(context.Background(), "example.com", cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	got := cap.calls[0]
	if got.ViewportWidth != MinViewportWidth || got.ViewportHeight != MaxViewportHeight || got.WaitTime != MaxSettleMs {
		t.Fatalf("unclamped config reached capture request: %+v", got)
	}
}
