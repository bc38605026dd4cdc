// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

// LogUI is a UI for non-terminal stderr.
// Every message becomes a log record without escape sequences.
type LogUI struct{}

// PrintLines logs each non-empty line.
func (LogUI) PrintLines(msgs ...string) {
	for _, msg := range msgs {
		msg = strings.TrimSpace(ansi.Strip(msg))
		if msg == "" {
			continue
		}
		log.Info(msg)
	}
}

// Infof implements UI.
func (LogUI) Infof(format string, args ...any) {
	log.Helper()
	log.Info(ansi.Strip(fmt.Sprintf(format, args...)))
}

// Warningf implements UI.
func (LogUI) Warningf(format string, args ...any) {
	log.Helper()
	log.Warn(ansi.Strip(fmt.Sprintf(format, args...)))
}

// Errorf implements UI.
func (LogUI) Errorf(format string, args ...any) {
	log.Helper()
	log.Error(ansi.Strip(fmt.Sprintf(format, args...)))
}

// NewSpinner implements UI.
// Logs can't animate, so only start and completion are reported.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}

type logSpinner struct {
	msg     string
	started time.Time
}

func (l *logSpinner) Start(format string, args ...any) {
	l.msg = fmt.Sprintf(format, args...)
	l.started = time.Now()
	log.Info(l.msg)
}

func (l *logSpinner) Stop(err error) {
	d := FormatDuration(time.Since(l.started))
	if err != nil {
		log.Warn("failed", "op", l.msg, "dur", d, "err", err)
		return
	}
	log.Info("done", "op", l.msg, "dur", d)
}
