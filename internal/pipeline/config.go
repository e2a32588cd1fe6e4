package pipeline

import "siteclone/internal/providers/reconstruct"

// Capture viewport and settle bounds. Values outside these ranges are
// clamped at the edit boundary and never reach the capture collaborator.
const (
	MinViewportWidth  = 800
	MaxViewportWidth  = 1920
	MinViewportHeight = 600
	MaxViewportHeight = 1080
	MinSettleMs       = 3000
	MaxSettleMs       = 15000

	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultSettleMs       = 8000
)

// Config is the immutable per-run configuration bundle.
type Config struct {
	ViewportWidth  int
	ViewportHeight int
	SettleMs       int
	Model          string
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
		SettleMs:       DefaultSettleMs,
		Model:          reconstruct.DefaultModel,
	}
}

// Clamp returns a copy with every value forced into its documented bounds
// and the model normalized to a supported identifier. Producing a config
// never fails.
func (c Config) Clamp() Config {
	c.ViewportWidth = clamp(c.ViewportWidth, MinViewportWidth, MaxViewportWidth, DefaultViewportWidth)
	c.ViewportHeight = clamp(c.ViewportHeight, MinViewportHeight, MaxViewportHeight, DefaultViewportHeight)
	c.SettleMs = clamp(c.SettleMs, MinSettleMs, MaxSettleMs, DefaultSettleMs)
	c.Model = reconstruct.NormalizeModel(c.Model)
	return c
}

// clamp bounds v into [min, max]; the zero value means "unset" and takes
// the default instead of the lower bound.
func clamp(v, min, max, def int) int {
	if v == 0 {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
