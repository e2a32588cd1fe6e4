// Package locator validates and canonicalizes user-supplied website
// addresses before they reach the capture pipeline.
package locator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Kind classifies why an address was rejected.
type Kind string

const (
	KindEmpty     Kind = "empty"
	KindMalformed Kind = "malformed"
)

// ValidationError reports an address that never reaches the network.
type ValidationError struct {
	Kind  Kind
	Input string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmpty:
		return "locator: address is empty"
	default:
		return fmt.Sprintf("locator: malformed address %q", e.Input)
	}
}

// Locator is a validated absolute http(s) address. The zero value is not a
// valid locator; obtain one through Normalize.
type Locator struct {
	url *url.URL
}

// Normalize trims the raw input, prepends https:// when no scheme is present
// and parses the result as an absolute URL. It is a pure function: the same
// input always yields the same locator or the same validation error.
func Normalize(raw string) (Locator, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Locator{}, &ValidationError{Kind: KindEmpty, Input: raw}
	}
	if !schemePrefix.MatchString(trimmed) {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Locator{}, &ValidationError{Kind: KindMalformed, Input: raw}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Locator{}, &ValidationError{Kind: KindMalformed, Input: raw}
	}
	if parsed.Host == "" {
		return Locator{}, &ValidationError{Kind: KindMalformed, Input: raw}
	}
	return Locator{url: parsed}, nil
}

// String returns the canonical absolute address.
func (l Locator) String() string {
	if l.url == nil {
		return ""
	}
	return l.url.String()
}

// Host returns the address host, used for display and export naming.
func (l Locator) Host() string {
	if l.url == nil {
		return ""
	}
	return l.url.Host
}

// IsZero reports whether the locator was never constructed via Normalize.
func (l Locator) IsZero() bool {
	return l.url == nil
}
