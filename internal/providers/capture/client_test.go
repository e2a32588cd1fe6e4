package capture

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"siteclone/internal/providers"
)

func TestCaptureDecodesResult(t *testing.T) {
	var gotBody Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scrape" {
			t.Errorf("path = %q, want /scrape", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"url": "https://example.com",
			"title": "Example Domain",
			"enhanced_data": {
				"structure": {"hasNav": true, "hasFooter": true},
				"images": [{"src": "https://example.com/a.png", "alt": "logo", "width": 64, "height": 64}],
				"element_count": 120
			},
			"stats": {"content_length": 1200, "has_screenshot": true, "css_rules_found": 42, "images_found": 1, "dom_elements": 120},
			"timestamp": "2025-01-01T00:00:00Z",
			"status": "success",
			"extra_field_the_controller_ignores": {"nested": true}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	res, err := client.Capture(context.Background(), Request{
		URL:               "https://example.com",
		CaptureScreenshot: true,
		ViewportWidth:     1280,
		ViewportHeight:    720,
		WaitTime:          8000,
	})
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if gotBody.URL != "https://example.com" || !gotBody.CaptureScreenshot {
		t.Fatalf("request payload mismatch: %+v", gotBody)
	}
	if gotBody.ViewportWidth != 1280 || gotBody.ViewportHeight != 720 || gotBody.WaitTime != 8000 {
		t.Fatalf("viewport payload mismatch: %+v", gotBody)
	}
	if res.Title != "Example Domain" {
		t.Fatalf("title = %q", res.Title)
	}
	if !res.Enhanced.Structure.HasNav || !res.Enhanced.Structure.HasFooter {
		t.Fatalf("structure flags mismatch: %+v", res.Enhanced.Structure)
	}
	if res.Stats.CSSRulesFound != 42 || res.Stats.DOMElements != 120 {
		t.Fatalf("stats mismatch: %+v", res.Stats)
	}
	// Raw must round-trip unknown fields for the reconstruct payload.
	var echo map[string]any
	if err := json.Unmarshal(res.Raw, &echo); err != nil {
		t.Fatalf("raw body not JSON: %v", err)
	}
	if _, ok := echo["extra_field_the_controller_ignores"]; !ok {
		t.Fatalf("raw body lost unknown fields")
	}
}

func TestCaptureRemoteErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "Scraping failed: timeout"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	_, err := client.Capture(context.Background(), Request{URL: "https://example.com"})
	var rerr *providers.RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want RemoteError", err)
	}
	if rerr.Detail != "Scraping failed: timeout" {
		t.Fatalf("detail = %q", rerr.Detail)
	}
	if rerr.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d", rerr.Status)
	}
}

func TestCaptureTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewClient(Options{BaseURL: srv.URL})
	_, err := client.Capture(context.Background(), Request{URL: "https://example.com"})
	var terr *providers.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want TransportError", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL})
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
}
