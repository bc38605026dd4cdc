// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

const (
	eraseLine = "\r\033[K"
	cursorUp  = "\033[A"
)

// TermUI is a terminal UI.
// It rewrites progress lines in place.
type TermUI struct {
	w     io.Writer
	width int

	mu sync.Mutex
}

// NewTermUI returns a terminal UI writing to f.
func NewTermUI(f *os.File) *TermUI {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 0
	}
	return &TermUI{w: f, width: width}
}

// fit truncates msg to the terminal width, keeping escape sequences.
// Multi-line messages are left as is.
func (t *TermUI) fit(msg string) string {
	if t.width <= 4 || strings.Contains(strings.TrimSuffix(msg, "\n"), "\n") {
		return msg
	}
	nl := strings.HasSuffix(msg, "\n")
	msg = strings.TrimSuffix(msg, "\n")
	if ansi.StringWidth(msg) >= t.width {
		msg = ansi.Truncate(msg, t.width-1, "...")
	}
	if nl {
		msg += "\n"
	}
	return msg
}

// PrintLines implements UI.
func (t *TermUI) PrintLines(msgs ...string) {
	var sb strings.Builder
	if len(msgs) > 0 && msgs[0] == "\n" {
		msgs = msgs[1:]
	} else if len(msgs) > 0 {
		sb.WriteString(eraseLine)
		for range len(msgs) - 1 {
			sb.WriteString(cursorUp + eraseLine)
		}
	}
	first := true
	for _, msg := range msgs {
		if msg == "" {
			continue
		}
		if !first {
			sb.WriteByte('\n')
		}
		first = false
		sb.WriteString(t.fit(msg))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.w, sb.String())
}

func (t *TermUI) printf(st Style, format string, args ...any) {
	t.PrintLines("\n", eraseLine+Render(st, fmt.Sprintf(format, args...))+"\n")
}

// Infof implements UI.
func (t *TermUI) Infof(format string, args ...any) {
	t.printf(Plain, format, args...)
}

// Warningf implements UI. Warnings are yellow.
func (t *TermUI) Warningf(format string, args ...any) {
	t.printf(Yellow, format, args...)
}

// Errorf implements UI. Errors are red.
func (t *TermUI) Errorf(format string, args ...any) {
	t.printf(Red, format, args...)
}

// NewSpinner implements UI.
func (t *TermUI) NewSpinner() Spinner {
	return &termSpinner{ui: t}
}

var spinnerFrames = []string{"|", "/", "-", `\`}

type termSpinner struct {
	ui      *TermUI
	msg     string
	started time.Time
	quit    chan struct{}
	done    chan struct{}
}

func (s *termSpinner) Start(format string, args ...any) {
	s.msg = fmt.Sprintf(format, args...)
	s.started = time.Now()
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	s.ui.PrintLines(s.msg + "...")
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				s.ui.PrintLines(fmt.Sprintf("%s... %s %s", s.msg, spinnerFrames[i%len(spinnerFrames)], FormatDuration(time.Since(s.started))))
			}
		}
	}()
}

func (s *termSpinner) Stop(err error) {
	close(s.quit)
	<-s.done
	d := time.Since(s.started)
	switch {
	case err != nil:
		s.ui.PrintLines(fmt.Sprintf("%6s %s %s %v\n", FormatDuration(d), s.msg, Render(Red, "failed"), err))
	case d < DurationThreshold:
		s.ui.PrintLines(eraseLine)
	default:
		s.ui.PrintLines(fmt.Sprintf("%6s %s\n", FormatDuration(d), s.msg))
	}
}
