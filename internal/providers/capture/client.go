// Package capture is the HTTP client for the remote capture collaborator,
// which renders a live website and extracts its structure, assets and a
// screenshot.
package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"siteclone/internal/providers"
)

const defaultTimeout = 90 * time.Second

// Options configures the capture client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the capture collaborator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Capture issues one /scrape call and decodes the structured result. A
// non-2xx status becomes a RemoteError carrying the collaborator's detail
// message; a failed exchange becomes a TransportError.
func (c *Client) Capture(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("capture: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("capture: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &providers.TransportError{Op: "capture", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.TransportError{Op: "capture", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &providers.RemoteError{
			Op:     "capture",
			Status: resp.StatusCode,
			Detail: providers.DecodeDetail(raw),
		}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("capture: decode response: %w", err)
	}
	result.Raw = raw

	c.logger.Debug().
		Str("url", result.URL).
		Str("title", result.Title).
		Int("images", result.Stats.ImagesFound).
		Int("dom_elements", result.Stats.DOMElements).
		Bool("screenshot", result.Stats.HasScreenshot).
		Msg("capture: page captured")
	return &result, nil
}

// Health probes the collaborator's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("capture: build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &providers.TransportError{Op: "capture health", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &providers.RemoteError{
			Op:     "capture health",
			Status: resp.StatusCode,
			Detail: providers.DecodeDetail(raw),
		}
	}
	return nil
}
