package capture

import "encoding/json"

// Request is the payload of the capture collaborator's /scrape endpoint.
type Request struct {
	URL               string `json:"url"`
	CaptureScreenshot bool   `json:"capture_screenshot"`
	ViewportWidth     int    `json:"viewport_width"`
	ViewportHeight    int    `json:"viewport_height"`
	WaitTime          int    `json:"wait_time"`
}

// Result is the capture collaborator's response. Only the fields the
// controller displays are modeled; Raw preserves the complete body so the
// reconstruct stage receives the capture data untouched.
type Result struct {
	URL         string   `json:"url"`
	OriginalURL string   `json:"original_url"`
	Title       string   `json:"title"`
	Screenshot  string   `json:"screenshot"`
	Enhanced    Enhanced `json:"enhanced_data"`
	Stats       Stats    `json:"stats"`
	Timestamp   string   `json:"timestamp"`
	Status      string   `json:"status"`

	Raw json.RawMessage `json:"-"`
}

// Enhanced carries the structural analysis extracted from the live page.
type Enhanced struct {
	Headings     Headings  `json:"headings"`
	Images       []Image   `json:"images"`
	Structure    Structure `json:"structure"`
	ElementCount int       `json:"element_count"`
}

type Headings struct {
	H1 []Heading `json:"h1"`
	H2 []Heading `json:"h2"`
}

type Heading struct {
	Text string `json:"text"`
}

// Image describes one asset from the page's inventory.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Structure flags which layout sections the page exposes.
type Structure struct {
	HasNav     bool `json:"hasNav"`
	HasHeader  bool `json:"hasHeader"`
	HasFooter  bool `json:"hasFooter"`
	HasSidebar bool `json:"hasSidebar"`
	HasMain    bool `json:"hasMain"`
}

// Stats aggregates the capture's page statistics.
type Stats struct {
	ContentLength int  `json:"content_length"`
	HasScreenshot bool `json:"has_screenshot"`
	CSSRulesFound int  `json:"css_rules_found"`
	ImagesFound   int  `json:"images_found"`
	DOMElements   int  `json:"dom_elements"`
}
