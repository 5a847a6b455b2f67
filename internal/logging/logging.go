// Package logging builds the timestamped logger every qvenv component
// reports progress through.
//
// Each status line carries a "2006-01-02 15:04:05" timestamp, so a
// terminal transcript reads as a timeline of what the tool did. Loggers
// write to stderr in the CLI; stdout is left for output meant to be
// consumed by a shell (the activation command).
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout prefixed to every log line.
const TimeFormat = "2006-01-02 15:04:05"

// New creates a logger writing to w. Info level is the default; verbose
// lowers it to debug so skipped candidates and failed probes are shown.
func New(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Level:           log.InfoLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Components fall back to
// it when no logger is supplied.
func Discard() *log.Logger {
	return New(io.Discard, false)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}
