// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedxor.
//
// go-seedxor is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package logging provides the leveled slog logger used across the device
// flows. Log lines carry operation metadata such as session IDs, part
// counts and outcomes, and never secret material.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the level, format and destination of log output.
type Config struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format is text or json. Defaults to text.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Logger wraps a slog.Logger.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger creates a logger from cfg.
func NewLogger(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text", "console":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	return &Logger{logger: slog.New(handler), level: level}, nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
}

// DefaultLogger returns an info-level text logger on stderr.
func DefaultLogger() *Logger {
	l, _ := NewLogger(Config{})
	return l
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	l, _ := NewLogger(Config{Output: io.Discard, Level: "error"})
	return l
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...), level: l.level}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...any) {
	if l.level <= slog.LevelDebug {
		l.logger.Debug(fmt.Sprintf(format, args...))
	}
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

// MaybeError logs err if it is not nil.
func (l *Logger) MaybeError(msg string, err error) {
	if err != nil {
		l.logger.Error(msg, "error", err)
	}
}
