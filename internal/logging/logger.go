// Copyright (C) 2026 RepoSage Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging builds the application's slog logger.
//
// The TUI owns the terminal, so the default destination is a log file
// under the data directory rather than stderr. Non-interactive
// subcommands can opt into stderr output.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config configures the logger. The zero value discards everything.
type Config struct {
	// Verbose lowers the minimum level from Info to Debug.
	Verbose bool

	// Dir enables file logging: one JSON-lines file per day named
	// reposage_{YYYY-MM-DD}.log. Created with 0750 if missing.
	Dir string

	// Stderr additionally writes human-readable text to stderr. Must
	// stay false while the TUI is running.
	Stderr bool
}

// Logger wraps slog with the file handle it writes to.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New builds a logger per cfg. File-open failures degrade to the
// remaining destinations instead of failing startup.
func New(cfg Config) *Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	l := &Logger{}
	var handlers []slog.Handler
	if cfg.Dir != "" {
		if f, err := openLogFile(cfg.Dir); err == nil {
			l.file = f
			handlers = append(handlers, slog.NewJSONHandler(f, opts))
		} else if cfg.Stderr {
			fmt.Fprintf(os.Stderr, "file logging disabled: %v\n", err)
		}
	}
	if cfg.Stderr {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
	}

	switch len(handlers) {
	case 0:
		l.slog = slog.New(slog.NewTextHandler(io.Discard, opts))
	case 1:
		l.slog = slog.New(handlers[0])
	default:
		l.slog = slog.New(fanoutHandler(handlers))
	}
	return l
}

// Slog returns the underlying slog.Logger for injection.
func (l *Logger) Slog() *slog.Logger { return l.slog }

// Close flushes and closes the log file, if any. Safe to call twice.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create the log directory: %w", err)
	}
	name := fmt.Sprintf("reposage_%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open the log file: %w", err)
	}
	return f, nil
}
