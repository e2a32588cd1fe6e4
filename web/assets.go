// Package web embeds the static assets of the user-facing page.
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
