// Package logging builds the slog loggers used by the tools.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeFormat matches the tools' "[2006-01-02 15:04:05.000]" line prefix
const TimeFormat = "2006-01-02 15:04:05.000"

// Log file rotation defaults
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
)

// Options controls logger construction
type Options struct {
	Verbose bool      // Debug level instead of Info
	Output  io.Writer // defaults to os.Stderr

	// File, when set, also writes to a size-rotated log file
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// New returns a logger and a closer for any log file it opened
func New(opts Options) (*slog.Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = DefaultMaxSizeMB
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
		}
		if _, err := rotator.Write(nil); err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, rotator)
		closer = rotator
	}

	return slog.New(NewHandler(out, opts.Verbose)), closer, nil
}

// NewHandler returns a text handler with the tools' timestamp format
func NewHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				return slog.String(slog.TimeKey, a.Value.Time().Format(TimeFormat))
			}
			return a
		},
	})
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// OrDiscard returns logger, or a discarding logger when it is nil
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
