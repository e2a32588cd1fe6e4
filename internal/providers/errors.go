// Package providers holds the error surface shared by the remote
// collaborator clients.
package providers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TransportError indicates the remote call could not be completed at all:
// the request never produced a usable HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError indicates the collaborator answered with a failure status and,
// when available, an explanatory detail message.
type RemoteError struct {
	Op     string
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// DecodeDetail extracts the "detail" message from an error response body.
// Both collaborators report failures as {"detail": "..."}; anything else
// falls back to the trimmed raw body.
func DecodeDetail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}
