package engine

import (
	"github.com/segfaultlab/segheap/internal/block"
	"golang.org/x/exp/slog"
)

// DefaultLastBlockThreshold is the 50*W knob: the size above which a
// free last block is worth shrink-extending in place rather than
// abandoning to a later small request.
const DefaultLastBlockThreshold = 50 * block.WordSize

// Config holds the engine's tunable knobs. NewConfig returns the
// defaults; New also replaces a non-positive LastBlockThreshold with
// the default, and a nil Logger discards output.
type Config struct {
	// LastBlockThreshold is the 50*W knob, exposed here because it's a
	// tunable heuristic rather than a hard constant.
	LastBlockThreshold int
	// Logger receives the double-free warning and any
	// corruption-detection failures. Defaults to a discarding logger
	// if nil.
	Logger *slog.Logger
}

// NewConfig returns the default configuration.
func NewConfig() Config {
	return Config{
		LastBlockThreshold: DefaultLastBlockThreshold,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.HandlerOptions{Level: slog.LevelError + 1}.NewTextHandler(discard{}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
