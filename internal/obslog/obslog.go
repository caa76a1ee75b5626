// Package obslog wraps charmbracelet/log with the single small surface
// the CLI and scheduler need, collapsing what the teacher split across a
// legacy logger and an infrastructure adapter layer into one.
package obslog

import (
	"fmt"
	"io"
	"os"
	"strings"

	cblog "github.com/charmbracelet/log"
)

// Options configures a Logger.
type Options struct {
	Writer    io.Writer // defaults to os.Stderr
	Level     string    // debug, info, warn, error; defaults to info
	Formatter cblog.Formatter
}

// Logger is a thin, leveled wrapper used throughout the run.
type Logger struct {
	base *cblog.Logger
}

// New builds a Logger from Options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	level := cblog.InfoLevel
	if opts.Level != "" {
		parsed, err := cblog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	base := cblog.NewWithOptions(writer, cblog.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       opts.Formatter,
	})

	return &Logger{base: base}, nil
}

// With returns a derived Logger that always includes the given key/value
// pairs.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{base: l.base.With(kv...)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.base.Debug(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.base.Info(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.base.Warn(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.base.Error(msg, kv...) }
