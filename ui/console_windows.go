// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/windows"
)

// savedMode is the stderr console mode before Init, or 0 if unchanged.
var savedMode uint32

// Init enables ANSI escape sequences on the stderr console.
func Init() {
	h := windows.Handle(os.Stderr.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		log.Debugf("stderr is not a console: %v", err)
		return
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return
	}
	if err := windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err != nil {
		log.Warnf("failed to enable virtual terminal processing: %v", err)
		return
	}
	savedMode = mode
}

// Restore restores the console mode changed by Init.
func Restore() {
	if savedMode == 0 {
		return
	}
	if err := windows.SetConsoleMode(windows.Handle(os.Stderr.Fd()), savedMode); err != nil {
		log.Errorf("failed to restore console mode 0x%x: %v", savedMode, err)
	}
}
