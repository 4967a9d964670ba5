// Package logger provides prefixed charmbracelet/log loggers for the SuggestBox packages.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger on stderr that follows the global log level.
// Stdout is left alone since IPC mode writes msgpack there.
func New(prefix string) *log.Logger {
	return NewTo(os.Stderr, prefix)
}

// NewTo creates a prefixed logger writing to w.
func NewTo(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() == log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a new charm log with custom config
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Setup configures the global logger for a binary. Debug mode turns on
// timestamps; the default level only shows warnings and errors.
func Setup(w io.Writer, debug bool) {
	log.SetOutput(w)
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}
