// Package logger wires gookit/slog to the console and an append-only file.
package logger

import (
	"fmt"
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal interface components log through.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

const (
	lineTemplate = "[{{datetime}}] [{{level}}] {{message}}\n"
	timeFormat   = "2006-01-02T15:04:05.000Z07:00"
)

// New returns a logger writing every line at or above level to stdout and,
// when path is set, appending it to path. Close flushes the file.
func New(level, path string) (*slog.Logger, error) {
	levels := levelsFor(level)

	console := handler.NewConsoleHandler(levels)
	console.SetFormatter(textFormatter(true))

	handlers := []slog.Handler{console}
	if path != "" {
		fh, err := handler.NewFileHandler(path, handler.WithLogLevels(levels))
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		fh.SetFormatter(textFormatter(false))
		handlers = append(handlers, fh)
	}

	return slog.NewWithHandlers(handlers...), nil
}

func textFormatter(color bool) *slog.TextFormatter {
	f := slog.NewTextFormatter(lineTemplate)
	f.TimeFormat = timeFormat
	f.EnableColor = color
	return f
}

func levelsFor(name string) slog.Levels {
	limit := slog.LevelByName(strings.ToLower(name))

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= limit {
			levels = append(levels, lv)
		}
	}
	return levels
}

// Discard drops everything. Used by tests and dry runs.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}
