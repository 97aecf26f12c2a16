package segheap

import (
	"github.com/segfaultlab/segheap/internal/engine"
	"golang.org/x/exp/slog"
)

// Config controls how an Allocator is constructed: a plain struct
// built up by functional Options rather than a long constructor
// argument list.
type Config struct {
	engineConfig engine.Config
}

// Option mutates a Config during New.
type Option func(*Config)

// WithLogger routes the allocator's double-free and corruption
// diagnostics through logger instead of a discarding default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.engineConfig.Logger = logger
	}
}

// WithLastBlockThreshold overrides the 50*W last-block growth
// heuristic. Exposed as a tunable since it's a heuristic, not a hard
// requirement.
func WithLastBlockThreshold(bytes int) Option {
	return func(c *Config) {
		c.engineConfig.LastBlockThreshold = bytes
	}
}

func newConfig(opts []Option) Config {
	cfg := Config{engineConfig: engine.NewConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
