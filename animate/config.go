package animate

import "log/slog"

// Config configures the animation service.
type Config struct {
	// MaxSVGBytes caps the accepted request body size (default: 2 MiB).
	MaxSVGBytes int64 `json:"max_svg_bytes" yaml:"max_svg_bytes"`

	// Padding is the preview padding fraction (default: 0.10).
	Padding float64 `json:"padding" yaml:"padding"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxSVGBytes <= 0 {
		c.MaxSVGBytes = 2 * 1024 * 1024
	}
	if c.Padding <= 0 {
		c.Padding = 0.10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
