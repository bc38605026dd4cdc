// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui reports progress on stderr.
// stdout is left to the report itself.
package ui

import (
	"os"

	"golang.org/x/term"
)

// Spinner reports a long operation.
type Spinner interface {
	// Start starts the spinner with the specified formatted string.
	Start(format string, args ...any)
	// Stop stops the spinner, reporting err if it's not nil.
	Stop(err error)
}

// UI is a user interface.
type UI interface {
	// PrintLines prints message lines.
	// If msgs starts with "\n", lines are printed after the current line.
	// Otherwise, they replace the last len(msgs) lines.
	PrintLines(msgs ...string)
	// NewSpinner returns a new spinner.
	NewSpinner() Spinner
	// Infof reports an informational message.
	Infof(format string, args ...any)
	// Warningf reports a warning.
	Warningf(format string, args ...any)
	// Errorf reports an error.
	Errorf(format string, args ...any)
}

// Default holds the default UI.
// It's chosen at init and must not be changed later.
var Default UI

func init() {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		Default = NewTermUI(os.Stderr)
		return
	}
	Default = LogUI{}
}
