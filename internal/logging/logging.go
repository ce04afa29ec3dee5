// Package logging configures the process logger. One console writer on
// stderr so log lines never mix with the engine's stdout.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns the logger for one invocation. Verbose switches on the debug
// traces used by --extra-help.
func New(out io.Writer, verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
