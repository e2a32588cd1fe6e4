// Package preview owns the lifecycle of ephemeral, openable artifacts
// derived from generated markup. A handle exists only in process memory and
// is released exactly once, either by an explicit release or by replacement.
package preview

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"
)

// ErrUnknownHandle is returned when an operation references a handle that
// was never materialized or has already been released.
var ErrUnknownHandle = errors.New("preview: unknown artifact handle")

const (
	// Abandoned artifacts are swept so a long-lived process cannot
	// accumulate markup nobody can reach anymore.
	defaultTTL           = time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// Handle is an ephemeral reference to one materialized artifact. The zero
// value means "no artifact".
type Handle struct {
	ID        string
	CreatedAt time.Time
	Size      int
}

// IsZero reports whether the handle references nothing.
func (h Handle) IsZero() bool {
	return h.ID == ""
}

// Options configures the manager.
type Options struct {
	// BaseURL is the externally reachable address previews are served
	// from, e.g. http://localhost:8080.
	BaseURL string
	Logger  *zerolog.Logger
	TTL     time.Duration

	// OpenURL and CopyText default to the platform primitives (system
	// browser, system clipboard) and exist as fields for tests.
	OpenURL  func(url string) error
	CopyText func(text string) error
}

// Manager materializes, serves and releases artifact handles.
type Manager struct {
	store    *gocache.Cache
	baseURL  string
	logger   zerolog.Logger
	openURL  func(string) error
	copyText func(string) error
}

// NewManager constructs a manager with an in-memory store.
func NewManager(opts Options) *Manager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.OpenURL
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	return &Manager{
		store:    gocache.New(ttl, defaultSweepInterval),
		baseURL:  opts.BaseURL,
		logger:   logger,
		openURL:  openURL,
		copyText: copyText,
	}
}

type entry struct {
	markup    string
	createdAt time.Time
}

// Materialize wraps the markup as an openable HTML resource and returns its
// handle. It always succeeds for any string input.
func (m *Manager) Materialize(markup string) Handle {
	h := Handle{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Size:      len(markup),
	}
	m.store.Set(h.ID, entry{markup: markup, createdAt: h.CreatedAt}, gocache.DefaultExpiration)
	m.logger.Debug().Str("artifact_id", h.ID).Int("bytes", h.Size).Msg("preview: artifact materialized")
	return h
}

// Markup returns the stored markup for a live handle id.
func (m *Manager) Markup(id string) (string, bool) {
	e, ok := m.get(id)
	return e.markup, ok
}

// Export returns the markup together with its timestamp-derived download
// filename.
func (m *Manager) Export(id string) (markup, filename string, ok bool) {
	e, ok := m.get(id)
	if !ok {
		return "", "", false
	}
	return e.markup, ExportFilename(e.createdAt), true
}

func (m *Manager) get(id string) (entry, bool) {
	v, ok := m.store.Get(id)
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	return e, ok
}

// Open asks the platform to present the artifact in a new viewing context.
func (m *Manager) Open(h Handle) error {
	if h.IsZero() {
		return ErrUnknownHandle
	}
	if _, ok := m.store.Get(h.ID); !ok {
		return ErrUnknownHandle
	}
	return m.openURL(m.PreviewURL(h))
}

// Release frees the artifact behind the handle. Releasing an already
// released or zero handle is a no-op.
func (m *Manager) Release(h Handle) {
	if h.IsZero() {
		return
	}
	m.store.Delete(h.ID)
	m.logger.Debug().Str("artifact_id", h.ID).Msg("preview: artifact released")
}

// CopyText copies raw markup to the platform clipboard. A failure is
// reported to the caller and changes nothing else.
func (m *Manager) CopyText(markup string) error {
	if err := m.copyText(markup); err != nil {
		return fmt.Errorf("preview: copy to clipboard: %w", err)
	}
	return nil
}

// PreviewURL returns the address the artifact is served at.
func (m *Manager) PreviewURL(h Handle) string {
	return fmt.Sprintf("%s/preview/%s", m.baseURL, h.ID)
}

// ExportURL returns the address the artifact downloads from.
func (m *Manager) ExportURL(h Handle) string {
	return fmt.Sprintf("%s/export/%s", m.baseURL, h.ID)
}

// ExportFilename derives the downloadable artifact name from a timestamp.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("site-clone-%d.html", t.Unix())
}
