// Package reconstruct is the HTTP client for the generative reconstruction
// collaborator, which turns captured website data into standalone markup.
package reconstruct

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"siteclone/internal/providers"
)

const defaultTimeout = 180 * time.Second

// DefaultModel is used when no model identifier is configured.
const DefaultModel = "gpt-4o"

// SupportedModels lists the model identifiers the collaborator accepts.
// Anything else is normalized to DefaultModel before the call is issued.
var SupportedModels = []string{"gpt-4o", "gpt-4o-mini"}

// Request is the payload of the collaborator's /clone endpoint. ScrapedData
// carries the full capture body untouched.
type Request struct {
	Model               string          `json:"model"`
	IncludeResponsive   bool            `json:"include_responsive"`
	IncludeInteractions bool            `json:"include_interactions"`
	ScrapedData         json.RawMessage `json:"scraped_data"`
}

// Result is the collaborator's response.
type Result struct {
	Status         string         `json:"status"`
	ModelUsed      string         `json:"model_used"`
	HTMLContent    string         `json:"html_content"`
	ProcessingInfo ProcessingInfo `json:"processing_info"`
	Timestamp      string         `json:"timestamp"`
}

// ProcessingInfo describes how the generation run consumed its inputs.
type ProcessingInfo struct {
	ContextLength   int  `json:"context_length"`
	HasScreenshot   bool `json:"has_screenshot"`
	ImagesProcessed int  `json:"images_processed"`
	Responsive      bool `json:"responsive"`
	Interactive     bool `json:"interactive"`
}

// Options configures the reconstruct client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the reconstruct collaborator.
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

// NormalizeModel maps an arbitrary model string onto a supported identifier.
func NormalizeModel(model string) string {
	model = strings.TrimSpace(model)
	for _, m := range SupportedModels {
		if model == m {
			return m
		}
	}
	return DefaultModel
}

// Reconstruct issues one /clone call. The generated markup is scrubbed of
// code fences and guaranteed to start with a DOCTYPE before it is returned.
func (c *Client) Reconstruct(ctx context.Context, req Request) (*Result, error) {
	if len(req.ScrapedData) == 0 {
		return nil, fmt.Errorf("reconstruct: capture data is required")
	}
	req.Model = NormalizeModel(req.Model)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("reconstruct: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/clone", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("reconstruct: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &providers.TransportError{Op: "reconstruct", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.TransportError{Op: "reconstruct", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &providers.RemoteError{
			Op:     "reconstruct",
			Status: resp.StatusCode,
			Detail: providers.DecodeDetail(raw),
		}
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("reconstruct: decode response: %w", err)
	}
	result.HTMLContent = ScrubMarkup(result.HTMLContent)

	c.logger.Debug().
		Str("model", result.ModelUsed).
		Int("context_length", result.ProcessingInfo.ContextLength).
		Int("images_processed", result.ProcessingInfo.ImagesProcessed).
		Bool("screenshot_used", result.ProcessingInfo.HasScreenshot).
		Msg("reconstruct: markup generated")
	return &result, nil
}

var (
	htmlFence = regexp.MustCompile("(?s)```html\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ScrubMarkup strips markdown code fences the generative model sometimes
// wraps its output in, trims stray prose around the document and guarantees
// a DOCTYPE prefix.
func ScrubMarkup(markup string) string {
	if m := htmlFence.FindStringSubmatch(markup); m != nil {
		markup = m[1]
	} else if m := anyFence.FindStringSubmatch(markup); m != nil {
		markup = m[1]
	}

	start := strings.Index(markup, "<!DOCTYPE html>")
	if start == -1 {
		start = strings.Index(markup, "<html")
	}
	if start == -1 {
		start = 0
	}
	if end := strings.LastIndex(markup, "</html>"); end != -1 {
		markup = markup[start : end+len("</html>")]
	} else {
		markup = markup[start:]
	}

	markup = strings.TrimSpace(markup)
	if !strings.HasPrefix(markup, "<!DOCTYPE") {
		markup = "<!DOCTYPE html>\n" + markup
	}
	return markup
}
