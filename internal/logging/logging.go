// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is a configured log level name.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// IsValid reports whether lvl is a supported level.
func (lvl Level) IsValid() bool {
	switch lvl {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	default:
		return false
	}
}

// LogrusLevel maps lvl onto logrus, defaulting to info.
func (lvl Level) LogrusLevel() logrus.Level {
	switch lvl {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Options selects level, output format and an optional log file.
type Options struct {
	Level  Level
	Format string // "text" or "json"
	File   string
}

// Setup configures the standard logrus logger. The file, when set, receives
// plain-text copies of every entry in addition to stderr.
func Setup(opts Options) error {
	switch opts.Format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(opts.Level.LogrusLevel())

	if opts.File == "" {
		return nil
	}
	return addFileHook(opts.File)
}

// For returns an entry tagged with the component name.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

type fileHook struct {
	mu        sync.Mutex
	file      *os.File
	formatter logrus.Formatter
}

func addFileHook(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.AddHook(&fileHook{
		file:      f,
		formatter: &logrus.TextFormatter{FullTimestamp: true, DisableColors: true},
	})
	return nil
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.file.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "log file hook: %v\n", err)
		return err
	}
	return nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
