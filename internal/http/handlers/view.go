package handlers

import (
	"siteclone/internal/preview"
	"siteclone/internal/session"
)

type sessionView struct {
	Stage    session.Stage `json:"stage"`
	URL      string        `json:"url,omitempty"`
	Progress string        `json:"progress,omitempty"`
	Error    string        `json:"error,omitempty"`
	Capture  *captureView  `json:"capture,omitempty"`
	Artifact *artifactView `json:"artifact,omitempty"`
}

type captureView struct {
	Title         string `json:"title"`
	HasNav        bool   `json:"has_nav"`
	HasHeader     bool   `json:"has_header"`
	HasFooter     bool   `json:"has_footer"`
	HasSidebar    bool   `json:"has_sidebar"`
	ImagesFound   int    `json:"images_found"`
	CSSRulesFound int    `json:"css_rules_found"`
	DOMElements   int    `json:"dom_elements"`
	HasScreenshot bool   `json:"has_screenshot"`
	CapturedAt    string `json:"captured_at,omitempty"`
}

type artifactView struct {
	PreviewURL      string `json:"preview_url"`
	ExportURL       string `json:"export_url"`
	Filename        string `json:"filename"`
	SizeBytes       int    `json:"size_bytes"`
	ModelUsed       string `json:"model_used"`
	ContextLength   int    `json:"context_length"`
	ImagesProcessed int    `json:"images_processed"`
	ScreenshotUsed  bool   `json:"screenshot_used"`
	GeneratedAt     string `json:"generated_at,omitempty"`
}

// sessionView projects the session snapshot into the JSON shape the embedded
// page renders. Captured stats stay visible on a reconstruct-stage failure;
// the artifact block exists only for a completed run.
func (a *App) sessionView() sessionView {
	snap := a.Session.Snapshot()
	view := sessionView{
		Stage:    snap.Stage,
		URL:      snap.Locator,
		Progress: snap.Progress,
		Error:    snap.Error,
	}
	if c := snap.Capture; c != nil {
		view.Capture = &captureView{
			Title:         c.Title,
			HasNav:        c.Enhanced.Structure.HasNav,
			HasHeader:     c.Enhanced.Structure.HasHeader,
			HasFooter:     c.Enhanced.Structure.HasFooter,
			HasSidebar:    c.Enhanced.Structure.HasSidebar,
			ImagesFound:   c.Stats.ImagesFound,
			CSSRulesFound: c.Stats.CSSRulesFound,
			DOMElements:   c.Stats.DOMElements,
			HasScreenshot: c.Stats.HasScreenshot,
			CapturedAt:    c.Timestamp,
		}
	}
	if art := snap.Artifact; art != nil && !snap.Handle.IsZero() {
		view.Artifact = &artifactView{
			PreviewURL:      a.Previews.PreviewURL(snap.Handle),
			ExportURL:       a.Previews.ExportURL(snap.Handle),
			Filename:        preview.ExportFilename(snap.Handle.CreatedAt),
			SizeBytes:       snap.Handle.Size,
			ModelUsed:       art.ModelUsed,
			ContextLength:   art.ProcessingInfo.ContextLength,
			ImagesProcessed: art.ProcessingInfo.ImagesProcessed,
			ScreenshotUsed:  art.ProcessingInfo.HasScreenshot,
			GeneratedAt:     art.Timestamp,
		}
	}
	return view
}
