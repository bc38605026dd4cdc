// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Style is a text style for progress messages.
type Style int

const (
	Plain Style = iota
	Bold
	Red
	Green
	Yellow
)

// renderer follows stderr's color profile, so colors disappear when
// stderr is redirected even if stdout is a terminal.
var renderer = lipgloss.NewRenderer(os.Stderr)

var styles = map[Style]lipgloss.Style{
	Plain:  renderer.NewStyle(),
	Bold:   renderer.NewStyle().Bold(true),
	Red:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	Green:  renderer.NewStyle().Foreground(lipgloss.Color("2")),
	Yellow: renderer.NewStyle().Foreground(lipgloss.Color("3")),
}

// Render renders s in style st.
func Render(st Style, s string) string {
	return styles[st].Render(s)
}
