// Copyright (C) 2024 stencil contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging is a small wrapper around the [log/slog] package
// focused on providing consistency in logging across the modctl
// codebase, and a seam the resolver can log diagnostics through
// without depending on a concrete backend.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// _ ensures that the logger struct satisfies the Logger interface.
var _ Logger = &logger{}

// Logger is the logging interface used throughout modctl. The
// resolver, graph, and actions packages accept a Logger instead of a
// concrete backend so that tests can substitute a captured logger.
type Logger interface {
	Info(string, ...any)
	Infof(string, ...any)
	Debug(string, ...any)
	Debugf(string, ...any)
	Error(string, ...any)
	Errorf(string, ...any)
	Warn(string, ...any)
	Warnf(string, ...any)
	With(...any) Logger
	WithError(error) Logger
	SetLevel(Level)
}

// Level is a logging level.
type Level = charmlog.Level

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
)

// New creates a new Logger that writes to stderr.
func New() Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a new Logger that writes to w.
func NewWithWriter(w io.Writer) Logger {
	handler := charmlog.New(w)
	return &logger{newSlogLogger(handler), handler}
}

// Noop returns a Logger that discards everything written to it. Used
// as the default when a caller does not supply one.
func Noop() Logger {
	handler := charmlog.New(io.Discard)
	return &logger{newSlogLogger(handler), handler}
}

// newSlogLogger wraps a charm log handler in a slog.Logger.
func newSlogLogger(handler *charmlog.Logger) *slog.Logger {
	return slog.New(handler)
}

// logger is a simple wrapper around the slog.Logger interface. Use
// [Logger] when passing around loggers in the modctl codebase.
type logger struct {
	*slog.Logger
	handler *charmlog.Logger
}

// With wraps the slog.With method to return a new logger with the
// provided arguments while satisfying the Logger interface.
func (l *logger) With(args ...any) Logger {
	return &logger{l.Logger.With(args...), l.handler}
}

// WithError wraps the slog.With method using a consistent key for
// errors, "error".
func (l *logger) WithError(err error) Logger {
	return &logger{l.Logger.With("error", err), l.handler}
}

// SetLevel updates the level of the current logger to the provided
// level.
func (l *logger) SetLevel(level Level) {
	l.handler.SetLevel(level)
}

// Infof wraps Info with a formatted message.
func (l *logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Debugf wraps Debug with a formatted message.
func (l *logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}

// Errorf wraps Error with a formatted message.
func (l *logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Warnf wraps Warn with a formatted message.
func (l *logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}
