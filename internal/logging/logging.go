// Package logging builds the zerolog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Options control logger construction.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string

	// Format is "console" for human-friendly output or "json".
	Format string

	// Verbose raises the level: 1 selects debug, 2 or more selects trace.
	Verbose int

	// Quiet restricts output to errors and overrides Verbose.
	Quiet bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q", opts.Level)
		}
	}
	switch {
	case opts.Quiet:
		level = zerolog.ErrorLevel
	case opts.Verbose >= 2:
		level = zerolog.TraceLevel
	case opts.Verbose == 1 && level > zerolog.DebugLevel:
		level = zerolog.DebugLevel
	}

	switch strings.ToLower(opts.Format) {
	case "", "console":
		cw := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.TimeFormat = "15:04:05"
		})
		return zerolog.New(cw).Level(level).With().Timestamp().Logger(), nil
	case "json":
		return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q, must be console or json", opts.Format)
	}
}

// Nop returns a disabled logger, useful for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}
