// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// It can store arbitrary labels to each context.
// The main use case is to add unit context (module, dialect, unit id)
// to each log entry automatically.
package clog

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/charmbracelet/log"
)

type contextKeyType int

var contextKey contextKeyType

// New creates a new Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{
		l: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
		}),
	}
}

var defaultLogger = New(os.Stderr)

// Default returns the process wide logger used when ctx has none.
func Default() *Logger {
	return defaultLogger
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// NewSpan sets a new logger with the given labels to the context.
func NewSpan(ctx context.Context, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).Span(labels))
}

// FromContext returns a logger in the context, or the default logger
// if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok {
		return defaultLogger
	}
	return logger
}

// Logger logs with the labels of the context.
type Logger struct {
	l *log.Logger
}

// Span returns a sub logger with labels added to the current ones.
func (l *Logger) Span(labels map[string]string) *Logger {
	var kvs []any
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		kvs = append(kvs, k, labels[k])
	}
	return &Logger{l: l.l.With(kvs...)}
}

// SetLevel sets the minimum level logged.
func (l *Logger) SetLevel(level log.Level) {
	l.l.SetLevel(level)
}

// V checks at verbose log level.
func (l *Logger) V(level int) bool {
	return level <= 0 || l.l.GetLevel() <= log.DebugLevel
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func (l *Logger) Debugf(format string, args ...any) {
	l.l.Helper()
	l.l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs at info log level in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...any) {
	l.l.Helper()
	l.l.Info(fmt.Sprintf(format, args...))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func (l *Logger) Warningf(format string, args ...any) {
	l.l.Helper()
	l.l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...any) {
	l.l.Helper()
	l.l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs at debug log level in the manner of fmt.Printf.
func Debugf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.l.Helper()
	logger.l.Debug(fmt.Sprintf(format, args...))
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.l.Helper()
	logger.l.Info(fmt.Sprintf(format, args...))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.l.Helper()
	logger.l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.l.Helper()
	logger.l.Error(fmt.Sprintf(format, args...))
}
