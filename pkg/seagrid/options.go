package seagrid

import (
	"io"
	"log/slog"
)

// BindOptions configures binding behavior.
type BindOptions struct {
	// Logger receives structured progress events while a grid builds:
	// topology shapes, polygon counts, index sizes. Default is nil - no
	// logging.
	//
	// The logger is only consulted during construction; a built grid never
	// logs.
	Logger *slog.Logger
}

// DefaultBindOptions returns default options.
func DefaultBindOptions() *BindOptions {
	return &BindOptions{
		Logger: nil,
	}
}

// logger resolves the configured logger, tolerating a nil receiver.
func (o *BindOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}
